package cache

import (
	"context"
	"fmt"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/msc"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

// SubsystemAddress is the address of the cache subsystem.
var SubsystemAddress = management.Address{{Key: "subsystem", Value: "cache"}}

// ServiceName returns the container service name of cache name.
func ServiceName(name string) string { return "cache." + name }

// Address returns the management address of cache name.
func Address(name string) management.Address {
	return SubsystemAddress.Child("cache", name)
}

// Install adds s to the container in on-demand mode and registers its
// management resource.
func Install(c *msc.Container, model *management.Model, s *Store) error {
	if _, err := c.Install(ServiceName(s.Name()), s, msc.ModeOnDemand); err != nil {
		return err
	}
	model.Ensure(SubsystemAddress, "cache subsystem")
	if err := model.Register(Address(s.Name()), NewResource(c, s)); err != nil {
		return fmt.Errorf("register cache %s: %w", s.Name(), err)
	}
	return nil
}

// NewResource builds the management resource of s. Runtime metrics start
// the cache when it is down.
func NewResource(c *msc.Container, s *Store) *management.Resource {
	svc := ServiceName(s.Name())
	stat := func(f func(Stats) uint64) management.ReadHandler {
		return msc.ServiceMetric(c, svc, func(_ context.Context, s *Store) (any, error) {
			return int64(f(s.Stats())), nil
		})
	}

	cfg := s.Config()
	return management.NewResource("Badger-backed cache "+s.Name(),
		management.AttributeDefinition{
			Name: "in-memory", Description: "Whether entries are kept in memory only",
			Type: management.TypeBool, Read: management.Constant(cfg.InMemory),
		},
		management.AttributeDefinition{
			Name: "directory", Description: "Data directory",
			Type: management.TypeString, Read: management.Constant(cfg.Dir),
		},
		management.AttributeDefinition{
			Name: "hits", Description: "Number of reads that found an entry",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: stat(func(st Stats) uint64 { return st.Hits }),
		},
		management.AttributeDefinition{
			Name: "misses", Description: "Number of reads that found no entry",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: stat(func(st Stats) uint64 { return st.Misses }),
		},
		management.AttributeDefinition{
			Name: "stores", Description: "Number of writes",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: stat(func(st Stats) uint64 { return st.Stores }),
		},
		management.AttributeDefinition{
			Name: "removes", Description: "Number of removed entries",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: stat(func(st Stats) uint64 { return st.Removes }),
		},
		management.AttributeDefinition{
			Name: "number-of-entries", Description: "Number of live entries",
			Type: management.TypeInt, Metric: true,
			Read: msc.ServiceMetric(c, svc, func(ctx context.Context, s *Store) (any, error) {
				return s.Len(ctx, "")
			}),
		},
		management.AttributeDefinition{
			Name: "size", Description: "Size of the LSM tree and value log",
			Type: management.TypeLong, Metric: true, Unit: metric.UnitBytes,
			Read: msc.ServiceMetric(c, svc, func(_ context.Context, s *Store) (any, error) {
				return s.Size()
			}),
		},
	)
}
