package aws

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// mockEC2 implements EC2API for testing. Unset funcs return empty outputs.
type mockEC2 struct {
	DescribeInstancesFunc  func(ctx context.Context, params *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
	StartInstancesFunc     func(ctx context.Context, params *ec2.StartInstancesInput) (*ec2.StartInstancesOutput, error)
	StopInstancesFunc      func(ctx context.Context, params *ec2.StopInstancesInput) (*ec2.StopInstancesOutput, error)
	TerminateInstancesFunc func(ctx context.Context, params *ec2.TerminateInstancesInput) (*ec2.TerminateInstancesOutput, error)
	RebootInstancesFunc    func(ctx context.Context, params *ec2.RebootInstancesInput) (*ec2.RebootInstancesOutput, error)
	RunInstancesFunc       func(ctx context.Context, params *ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error)
	CreateTagsFunc         func(ctx context.Context, params *ec2.CreateTagsInput) (*ec2.CreateTagsOutput, error)

	mu        sync.Mutex
	describes int
	starts    []*ec2.StartInstancesInput
	stops     []*ec2.StopInstancesInput
	terms     []*ec2.TerminateInstancesInput
	reboots   []*ec2.RebootInstancesInput
	runs      []*ec2.RunInstancesInput
	tags      []*ec2.CreateTagsInput
}

var _ EC2API = (*mockEC2)(nil)

func (m *mockEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	m.mu.Lock()
	m.describes++
	m.mu.Unlock()
	if m.DescribeInstancesFunc != nil {
		return m.DescribeInstancesFunc(ctx, params)
	}
	return &ec2.DescribeInstancesOutput{}, nil
}

func (m *mockEC2) StartInstances(ctx context.Context, params *ec2.StartInstancesInput, _ ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	m.mu.Lock()
	m.starts = append(m.starts, params)
	m.mu.Unlock()
	if m.StartInstancesFunc != nil {
		return m.StartInstancesFunc(ctx, params)
	}
	return &ec2.StartInstancesOutput{}, nil
}

func (m *mockEC2) StopInstances(ctx context.Context, params *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	m.mu.Lock()
	m.stops = append(m.stops, params)
	m.mu.Unlock()
	if m.StopInstancesFunc != nil {
		return m.StopInstancesFunc(ctx, params)
	}
	return &ec2.StopInstancesOutput{}, nil
}

func (m *mockEC2) TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	m.mu.Lock()
	m.terms = append(m.terms, params)
	m.mu.Unlock()
	if m.TerminateInstancesFunc != nil {
		return m.TerminateInstancesFunc(ctx, params)
	}
	return &ec2.TerminateInstancesOutput{}, nil
}

func (m *mockEC2) RebootInstances(ctx context.Context, params *ec2.RebootInstancesInput, _ ...func(*ec2.Options)) (*ec2.RebootInstancesOutput, error) {
	m.mu.Lock()
	m.reboots = append(m.reboots, params)
	m.mu.Unlock()
	if m.RebootInstancesFunc != nil {
		return m.RebootInstancesFunc(ctx, params)
	}
	return &ec2.RebootInstancesOutput{}, nil
}

func (m *mockEC2) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	m.mu.Lock()
	m.runs = append(m.runs, params)
	m.mu.Unlock()
	if m.RunInstancesFunc != nil {
		return m.RunInstancesFunc(ctx, params)
	}
	return &ec2.RunInstancesOutput{}, nil
}

func (m *mockEC2) CreateTags(ctx context.Context, params *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	m.mu.Lock()
	m.tags = append(m.tags, params)
	m.mu.Unlock()
	if m.CreateTagsFunc != nil {
		return m.CreateTagsFunc(ctx, params)
	}
	return &ec2.CreateTagsOutput{}, nil
}

// describeCalls returns how many DescribeInstances calls were made
func (m *mockEC2) describeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.describes
}

// newInstance builds an EC2 instance in the given state
func newInstance(id, state string, tags ...types.Tag) types.Instance {
	return types.Instance{
		InstanceId: aws.String(id),
		State:      &types.InstanceState{Name: types.InstanceStateName(state)},
		Tags:       tags,
	}
}

// newReservation wraps instances in a reservation
func newReservation(instances ...types.Instance) types.Reservation {
	return types.Reservation{Instances: instances}
}

// standardReservations mirrors a running, tagged instance next to a stopped, untagged one
func standardReservations() []types.Reservation {
	return []types.Reservation{
		newReservation(newInstance("i-f800157b", "running", types.Tag{Key: aws.String("Name"), Value: aws.String("ONEHub")})),
		newReservation(newInstance("i-88d2d80b", "stopped")),
	}
}

// withReservations returns a describe func answering with a fixed set of reservations
func withReservations(reservations ...types.Reservation) func(context.Context, *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error) {
	return func(context.Context, *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error) {
		return &ec2.DescribeInstancesOutput{Reservations: reservations}, nil
	}
}

// withStates returns a describe func reporting the given states for id, one per call.
// The last state repeats once the sequence is exhausted. An empty state
// leaves the instance out of the response.
func withStates(id string, states ...string) func(context.Context, *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error) {
	var mu sync.Mutex
	call := 0
	return func(context.Context, *ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error) {
		mu.Lock()
		idx := call
		if idx >= len(states) {
			idx = len(states) - 1
		}
		call++
		mu.Unlock()

		if states[idx] == "" {
			return &ec2.DescribeInstancesOutput{}, nil
		}
		return &ec2.DescribeInstancesOutput{
			Reservations: []types.Reservation{newReservation(newInstance(id, states[idx]))},
		}, nil
	}
}
