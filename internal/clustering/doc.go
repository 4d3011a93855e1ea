// Package clustering provides the gossip channel that joins kernel nodes
// into a cluster view. Channels are memberlist instances run as on-demand
// services and exposed under /subsystem=jgroups/channel=<name>.
package clustering
