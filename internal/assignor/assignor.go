// Package assignor fixes the shape of a consumer-group partition
// assignor: the interface a group leader would call to turn topic
// metadata and member subscriptions into a partition assignment.
//
// This is a pure interface surface, grounded in
// original_source/aiokafka/coordinator/assignors/abstract.py's
// AbstractPartitionAssignor. No algorithmic content is provided beyond
// the trivial RoundRobin below, which exists to give the interface a
// compiling reference point, not to be a production assignor.
package assignor

// ClusterMetadata is the subset of cluster state an assignor needs:
// which partitions exist per topic.
type ClusterMetadata struct {
	PartitionsForTopic map[string][]int32
}

// GroupMember is one consumer group member's subscription, as decoded
// from its JoinGroupRequest metadata.
type GroupMember struct {
	MemberID string
	Topics   []string
}

// TopicPartition identifies one partition of one topic.
type TopicPartition struct {
	Topic     string
	Partition int32
}

// Assignment is what one member is assigned to consume.
type Assignment struct {
	Partitions []TopicPartition
}

// GroupProtocolMetadata is submitted by a member via JoinGroupRequest so
// the chosen assignor has enough information to assign it partitions.
type GroupProtocolMetadata struct {
	Topics []string
}

// Assignor turns cluster metadata and member subscriptions into a
// partition assignment for a consumer group.
type Assignor interface {
	// Name identifies the assignor, carried as the JoinGroupRequest
	// protocol name.
	Name() string

	// Assign computes one partition assignment per member.
	Assign(cluster ClusterMetadata, members []GroupMember) (map[string]Assignment, error)

	// Metadata builds the protocol metadata a member submits for the
	// topics it subscribes to.
	Metadata(topics []string) GroupProtocolMetadata

	// OnAssignment is called with a member's own resulting assignment,
	// for assignors that track state across rebalances.
	OnAssignment(assignment Assignment)
}

// RoundRobin is a minimal reference Assignor: it lays every partition of
// every subscribed topic end to end, in first-seen topic order, and
// deals them out to members in turn. It exists to exercise the Assignor
// interface, not as a tuned production strategy.
type RoundRobin struct{}

func (RoundRobin) Name() string { return "roundrobin" }

func (RoundRobin) Assign(cluster ClusterMetadata, members []GroupMember) (map[string]Assignment, error) {
	out := make(map[string]Assignment, len(members))
	if len(members) == 0 {
		return out, nil
	}
	for _, m := range members {
		out[m.MemberID] = Assignment{}
	}

	topics := subscribedTopics(members)
	i := 0
	for _, topic := range topics {
		for _, partition := range cluster.PartitionsForTopic[topic] {
			member := members[i%len(members)]
			a := out[member.MemberID]
			a.Partitions = append(a.Partitions, TopicPartition{Topic: topic, Partition: partition})
			out[member.MemberID] = a
			i++
		}
	}
	return out, nil
}

func (RoundRobin) Metadata(topics []string) GroupProtocolMetadata {
	return GroupProtocolMetadata{Topics: topics}
}

func (RoundRobin) OnAssignment(Assignment) {}

// subscribedTopics returns the union of every member's subscribed
// topics, in first-seen order, so Assign's partition layout is
// deterministic across calls with the same members.
func subscribedTopics(members []GroupMember) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, m := range members {
		for _, t := range m.Topics {
			if !seen[t] {
				seen[t] = true
				topics = append(topics, t)
			}
		}
	}
	return topics
}
