package models

import "time"

// Instance states as reported by EC2
const (
	StatePending      = "pending"
	StateRunning      = "running"
	StateShuttingDown = "shutting-down"
	StateStopping     = "stopping"
	StateStopped      = "stopped"
	StateTerminated   = "terminated"
)

// Tag is a single key/value label. Tags keep the order the provider returned them in.
type Tag struct {
	Key   string
	Value string
}

// Instance is the decoded view of one instance in a DescribeInstances response
type Instance struct {
	ID                    string
	State                 string
	PublicIP              string // empty unless the provider reported one
	InstanceType          string
	AvailabilityZone      string
	LaunchTime            *time.Time
	StateTransitionReason string
	Tags                  []Tag
}

// Reservation groups the instances launched by a single request
type Reservation struct {
	ID        string
	Instances []Instance
}

// First returns the first instance of the reservation
func (r Reservation) First() (Instance, bool) {
	if len(r.Instances) == 0 {
		return Instance{}, false
	}
	return r.Instances[0], true
}

// InstanceInfo represents EC2 instance information for display
type InstanceInfo struct {
	InstanceID       string     `json:"instanceId"`
	Name             string     `json:"name"`
	State            string     `json:"state"`
	InstanceType     string     `json:"instanceType"`
	Region           string     `json:"region"`
	AvailabilityZone string     `json:"availabilityZone"`
	PublicIP         string     `json:"publicIp,omitempty"`
	LaunchTime       *time.Time `json:"launchTime,omitempty"`
	StoppedTime      *time.Time `json:"stoppedTime,omitempty"`
}
