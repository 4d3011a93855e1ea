package clustering

import (
	"context"
	"fmt"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/msc"
)

// SubsystemAddress is the address of the clustering subsystem.
var SubsystemAddress = management.Address{{Key: "subsystem", Value: "jgroups"}}

// ServiceName returns the container service name of channel name.
func ServiceName(name string) string { return "jgroups.channel." + name }

// Address returns the management address of channel name.
func Address(name string) management.Address {
	return SubsystemAddress.Child("channel", name)
}

// Install adds ch to the container with the given mode and registers its
// management resource.
func Install(c *msc.Container, model *management.Model, ch *Channel, mode msc.Mode) error {
	if _, err := c.Install(ServiceName(ch.Name()), ch, mode); err != nil {
		return err
	}
	model.Ensure(SubsystemAddress, "clustering subsystem")
	if err := model.Register(Address(ch.Name()), NewResource(c, ch)); err != nil {
		return fmt.Errorf("register channel %s: %w", ch.Name(), err)
	}
	return nil
}

// NewResource builds the management resource of ch.
func NewResource(c *msc.Container, ch *Channel) *management.Resource {
	svc := ServiceName(ch.Name())
	return management.NewResource("Cluster channel "+ch.Name(),
		management.AttributeDefinition{
			Name: "node-name", Description: "Name of this node in the view",
			Type: management.TypeString, Read: management.Constant(ch.cfg.NodeName),
		},
		management.AttributeDefinition{
			Name: "members", Description: "Number of members in the current view",
			Type: management.TypeInt, Metric: true,
			Read: msc.ServiceMetric(c, svc, func(_ context.Context, ch *Channel) (any, error) {
				return ch.NumMembers()
			}),
		},
		management.AttributeDefinition{
			Name: "health-score", Description: "Local health awareness score, zero is healthy",
			Type: management.TypeInt, Metric: true,
			Read: msc.ServiceMetric(c, svc, func(_ context.Context, ch *Channel) (any, error) {
				return ch.HealthScore()
			}),
		},
		management.AttributeDefinition{
			Name: "view-changes", Description: "Number of joins and leaves observed",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: msc.ServiceMetric(c, svc, func(_ context.Context, ch *Channel) (any, error) {
				return int64(ch.ViewChanges()), nil
			}),
		},
		management.AttributeDefinition{
			Name: "coordinator", Description: "Member with the lowest name",
			Type: management.TypeString, Metric: true,
			Read: msc.ServiceMetric(c, svc, func(_ context.Context, ch *Channel) (any, error) {
				return ch.Coordinator()
			}),
		},
		management.AttributeDefinition{
			Name: "view", Description: "Members of the current view",
			Type: management.TypeString, Metric: true,
			Read: msc.ServiceMetric(c, svc, func(_ context.Context, ch *Channel) (any, error) {
				return ch.Members()
			}),
		},
	)
}
