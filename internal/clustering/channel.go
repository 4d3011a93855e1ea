package clustering

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/memberlist"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

var ErrNotStarted = errors.New("clustering: channel not started")

// Config configures a channel.
type Config struct {
	// Name is the channel name.
	Name string
	// NodeName identifies this node in the cluster view.
	NodeName string
	BindAddr string
	// BindPort 0 picks a free port.
	BindPort int
	Seeds    []string
	// Endpoint is this node's invocation URL, gossiped to other members.
	Endpoint     string
	LeaveTimeout time.Duration
}

// Member is one node of the current view.
type Member struct {
	Name     string `json:"name"`
	Addr     string `json:"addr"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Channel is a memberlist-backed cluster channel. It implements msc.Service.
type Channel struct {
	cfg Config
	log logger.Logger

	mu   sync.RWMutex
	list *memberlist.Memberlist

	viewChanges atomic.Uint64
}

// New creates a channel. It joins the cluster when started.
func New(cfg Config, log logger.Logger) *Channel {
	if log == nil {
		log = logger.Default()
	}
	if cfg.LeaveTimeout <= 0 {
		cfg.LeaveTimeout = 5 * time.Second
	}
	return &Channel{cfg: cfg, log: log.With("channel", cfg.Name)}
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.cfg.Name }

// Start creates the memberlist and joins the seeds. A channel without
// seeds forms a single-node view.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.list != nil {
		return nil
	}

	mlConfig := memberlist.DefaultLANConfig()
	if c.cfg.NodeName != "" {
		mlConfig.Name = c.cfg.NodeName
	}
	if c.cfg.BindAddr != "" {
		mlConfig.BindAddr = c.cfg.BindAddr
	}
	mlConfig.BindPort = c.cfg.BindPort
	mlConfig.AdvertisePort = c.cfg.BindPort
	mlConfig.Logger = newHCLogger(c.log, "memberlist").StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})
	mlConfig.Delegate = &metadataDelegate{endpoint: []byte(c.cfg.Endpoint)}
	mlConfig.Events = &eventDelegate{channel: c}

	list, err := memberlist.Create(mlConfig)
	if err != nil {
		return fmt.Errorf("channel %s: create memberlist: %w", c.cfg.Name, err)
	}

	if len(c.cfg.Seeds) > 0 {
		n, err := list.Join(c.cfg.Seeds)
		if err != nil {
			_ = list.Shutdown()
			return fmt.Errorf("channel %s: join seeds: %w", c.cfg.Name, err)
		}
		c.log.Info("joined cluster", "node", mlConfig.Name, "seeds", c.cfg.Seeds, "contacted", n)
	} else {
		c.log.Info("channel started", "node", mlConfig.Name)
	}

	c.list = list
	return nil
}

// Stop leaves the cluster and shuts the memberlist down.
func (c *Channel) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.list == nil {
		return nil
	}

	timeout := c.cfg.LeaveTimeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	if err := c.list.Leave(timeout); err != nil {
		c.log.Warn("leave failed", "error", err)
	}

	err := c.list.Shutdown()
	c.list = nil
	if err != nil {
		return fmt.Errorf("channel %s: shutdown memberlist: %w", c.cfg.Name, err)
	}
	c.log.Info("channel stopped")
	return nil
}

func (c *Channel) memberlist() (*memberlist.Memberlist, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.list == nil {
		return nil, ErrNotStarted
	}
	return c.list, nil
}

// Members returns the current view sorted by name.
func (c *Channel) Members() ([]Member, error) {
	list, err := c.memberlist()
	if err != nil {
		return nil, err
	}
	nodes := list.Members()
	members := make([]Member, 0, len(nodes))
	for _, n := range nodes {
		members = append(members, toMember(n))
	}
	slices.SortFunc(members, func(a, b Member) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return members, nil
}

// NumMembers returns the number of live members.
func (c *Channel) NumMembers() (int, error) {
	list, err := c.memberlist()
	if err != nil {
		return 0, err
	}
	return list.NumMembers(), nil
}

// HealthScore returns memberlist's awareness score. Zero is healthy.
func (c *Channel) HealthScore() (int, error) {
	list, err := c.memberlist()
	if err != nil {
		return 0, err
	}
	return list.GetHealthScore(), nil
}

// Coordinator returns the member with the lowest name.
func (c *Channel) Coordinator() (string, error) {
	members, err := c.Members()
	if err != nil {
		return "", err
	}
	if len(members) == 0 {
		return "", nil
	}
	return members[0].Name, nil
}

// ViewChanges returns the number of joins and leaves seen since start.
func (c *Channel) ViewChanges() uint64 { return c.viewChanges.Load() }

// LocalAddr returns the gossip address of this node.
func (c *Channel) LocalAddr() (string, error) {
	list, err := c.memberlist()
	if err != nil {
		return "", err
	}
	return toMember(list.LocalNode()).Addr, nil
}

func toMember(n *memberlist.Node) Member {
	return Member{
		Name:     n.Name,
		Addr:     net.JoinHostPort(n.Addr.String(), strconv.Itoa(int(n.Port))),
		Endpoint: string(n.Meta),
	}
}

type eventDelegate struct {
	channel *Channel
}

func (e *eventDelegate) NotifyJoin(node *memberlist.Node) {
	e.channel.viewChanges.Add(1)
	m := toMember(node)
	e.channel.log.Info("member joined", "member", m.Name, "addr", m.Addr, "endpoint", m.Endpoint)
}

func (e *eventDelegate) NotifyLeave(node *memberlist.Node) {
	e.channel.viewChanges.Add(1)
	e.channel.log.Info("member left", "member", node.Name, "addr", node.Addr.String())
}

func (e *eventDelegate) NotifyUpdate(node *memberlist.Node) {
	e.channel.log.Debug("member updated", "member", node.Name)
}

// metadataDelegate gossips the node's invocation endpoint.
type metadataDelegate struct {
	endpoint []byte
}

func (m *metadataDelegate) NodeMeta(limit int) []byte {
	if len(m.endpoint) > limit {
		return m.endpoint[:limit]
	}
	return m.endpoint
}

func (m *metadataDelegate) NotifyMsg([]byte)                           {}
func (m *metadataDelegate) GetBroadcasts(overhead, limit int) [][]byte { return nil }
func (m *metadataDelegate) LocalState(join bool) []byte                { return nil }
func (m *metadataDelegate) MergeRemoteState(buf []byte, join bool)     {}
