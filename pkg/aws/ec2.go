package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"
	"github.com/younsl/ec2ctl/internal/models"
	"github.com/younsl/ec2ctl/internal/wait"
	"github.com/younsl/ec2ctl/pkg/utils"
)

// DefaultPollInterval is the delay between status checks while waiting for a state
const DefaultPollInterval = 2 * time.Second

var (
	// ErrInstanceNotFound is returned when an operation needs an instance the provider does not report
	ErrInstanceNotFound = errors.New("instance not found")
	// ErrNoInstanceLaunched is returned when a run request comes back without instances
	ErrNoInstanceLaunched = errors.New("no instance launched")
	// ErrUnreachableState is returned when a wait can no longer succeed, e.g. the instance was terminated
	ErrUnreachableState = errors.New("instance can no longer reach the requested state")
)

// InstanceController runs lifecycle operations against EC2 instances.
// Every read goes to the provider; nothing is cached between calls.
type InstanceController struct {
	client       EC2API
	pollInterval time.Duration
	timeout      time.Duration
	waitOnRun    bool
	log          log.FieldLogger
}

// Option configures an InstanceController
type Option func(*InstanceController)

// WithPollInterval sets the delay between status checks while waiting
func WithPollInterval(d time.Duration) Option {
	return func(c *InstanceController) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithTimeout bounds every wait. Zero means wait until the context is done.
func WithTimeout(d time.Duration) Option {
	return func(c *InstanceController) {
		c.timeout = d
	}
}

// WithWaitOnRun makes RunInstance block until the new instance is running
func WithWaitOnRun(enabled bool) Option {
	return func(c *InstanceController) {
		c.waitOnRun = enabled
	}
}

// WithLogger sets the logger used for lifecycle events
func WithLogger(logger log.FieldLogger) Option {
	return func(c *InstanceController) {
		if logger != nil {
			c.log = logger
		}
	}
}

// NewInstanceController creates a controller over the given client
func NewInstanceController(client EC2API, opts ...Option) *InstanceController {
	c := &InstanceController{
		client:       client,
		pollInterval: DefaultPollInterval,
		log:          log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reservations returns every reservation visible to the client, following pagination
func (c *InstanceController) Reservations(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation

	paginator := ec2.NewDescribeInstancesPaginator(c.client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying EC2 instances: %w", err)
		}

		for _, reservation := range page.Reservations {
			reservations = append(reservations, convertReservation(reservation))
		}
	}

	return reservations, nil
}

// ListInstanceIDs returns the id of the first instance of every reservation.
// When tagFilter is non-empty only instances whose first tag has a value are
// kept. The filter text itself is not compared with the tag value.
func (c *InstanceController) ListInstanceIDs(ctx context.Context, tagFilter string) ([]string, error) {
	reservations, err := c.Reservations(ctx)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, reservation := range reservations {
		instance, ok := reservation.First()
		if !ok {
			continue
		}
		if tagFilter != "" && !utils.FirstTagHasValue(instance.Tags) {
			continue
		}
		ids = append(ids, instance.ID)
	}

	return ids, nil
}

// InstanceStatus returns the state name of the instance, or "" if the provider does not report it
func (c *InstanceController) InstanceStatus(ctx context.Context, instanceID string) (string, error) {
	instance, found, err := c.findInstance(ctx, instanceID)
	if err != nil || !found {
		return "", err
	}
	return instance.State, nil
}

// StartInstance starts a stopped instance and blocks until it is running.
// A stopping instance is first waited on until it is stopped.
func (c *InstanceController) StartInstance(ctx context.Context, instanceID string) error {
	logger := c.log.WithField("instance", instanceID)

	status, err := c.InstanceStatus(ctx, instanceID)
	if err != nil {
		return err
	}

	switch status {
	case "":
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	case models.StateRunning:
		logger.Debug("instance already running, skipping start")
		return nil
	case models.StateStopping:
		logger.Info("instance is stopping, waiting for it to stop before starting")
		if err := c.WaitForState(ctx, instanceID, models.StateStopped); err != nil {
			return err
		}
	}

	result, err := c.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("error starting EC2 instance %s: %w", instanceID, err)
	}

	current := ""
	if len(result.StartingInstances) > 0 && result.StartingInstances[0].CurrentState != nil {
		current = string(result.StartingInstances[0].CurrentState.Name)
	}
	logger.WithField("state", current).Info("start requested")

	if current == models.StateRunning {
		return nil
	}

	return c.WaitForState(ctx, instanceID, models.StateRunning)
}

// StopInstance requests a stop unless the instance is already stopped or stopping.
// It does not wait for the stop to complete.
func (c *InstanceController) StopInstance(ctx context.Context, instanceID string) error {
	logger := c.log.WithField("instance", instanceID)

	status, err := c.InstanceStatus(ctx, instanceID)
	if err != nil {
		return err
	}

	if status == models.StateStopped || status == models.StateStopping {
		logger.WithField("state", status).Debug("instance already stopped, skipping stop")
		return nil
	}

	if _, err := c.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
	}); err != nil {
		return fmt.Errorf("error stopping EC2 instance %s: %w", instanceID, err)
	}

	logger.Info("stop requested")
	return nil
}

// TerminateInstance requests termination unless the instance is already terminated
func (c *InstanceController) TerminateInstance(ctx context.Context, instanceID string) error {
	logger := c.log.WithField("instance", instanceID)

	status, err := c.InstanceStatus(ctx, instanceID)
	if err != nil {
		return err
	}

	if status == models.StateTerminated {
		logger.Debug("instance already terminated, skipping terminate")
		return nil
	}

	if _, err := c.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	}); err != nil {
		return fmt.Errorf("error terminating EC2 instance %s: %w", instanceID, err)
	}

	logger.Info("termination requested")
	return nil
}

// RebootInstance requests a reboot without checking the current state
func (c *InstanceController) RebootInstance(ctx context.Context, instanceID string) error {
	if _, err := c.client.RebootInstances(ctx, &ec2.RebootInstancesInput{
		InstanceIds: []string{instanceID},
	}); err != nil {
		return fmt.Errorf("error rebooting EC2 instance %s: %w", instanceID, err)
	}

	c.log.WithField("instance", instanceID).Info("reboot requested")
	return nil
}

// RunInstance launches an instance and returns the id of the first one created.
// A non-empty tagName is applied as the Name tag right after launch. With
// WithWaitOnRun the call then blocks until the instance is running. If tagging
// or waiting fails the id is still returned with the error.
func (c *InstanceController) RunInstance(ctx context.Context, tagName string, input *ec2.RunInstancesInput) (string, error) {
	if input == nil {
		return "", errors.New("launch parameters are required")
	}

	result, err := c.client.RunInstances(ctx, input)
	if err != nil {
		return "", fmt.Errorf("error launching EC2 instance: %w", err)
	}

	if len(result.Instances) == 0 || result.Instances[0].InstanceId == nil {
		return "", ErrNoInstanceLaunched
	}

	instanceID := aws.ToString(result.Instances[0].InstanceId)
	logger := c.log.WithField("instance", instanceID)
	logger.Info("instance launched")

	if tagName != "" {
		if _, err := c.client.CreateTags(ctx, &ec2.CreateTagsInput{
			Resources: []string{instanceID},
			Tags:      []types.Tag{utils.NameTag(tagName)},
		}); err != nil {
			return instanceID, fmt.Errorf("error tagging EC2 instance %s: %w", instanceID, err)
		}
		logger.WithField("name", tagName).Debug("name tag applied")
	}

	if c.waitOnRun {
		if err := c.WaitForState(ctx, instanceID, models.StateRunning); err != nil {
			return instanceID, err
		}
	}

	return instanceID, nil
}

// InstancePublicIP returns the public IP of a running instance, or "" in any other state
func (c *InstanceController) InstancePublicIP(ctx context.Context, instanceID string) (string, error) {
	instance, found, err := c.findInstance(ctx, instanceID)
	if err != nil || !found {
		return "", err
	}

	if instance.State != models.StateRunning {
		return "", nil
	}
	return instance.PublicIP, nil
}

// WaitForState polls the instance status until it equals state. An instance
// that is not listed yet is waited on; one that disappears after being listed
// ends the wait with ErrUnreachableState.
func (c *InstanceController) WaitForState(ctx context.Context, instanceID, state string) error {
	logger := c.log.WithFields(log.Fields{
		"instance": instanceID,
		"target":   state,
	})

	// a freshly launched instance may not be listed yet
	seen := false
	err := wait.PollImmediate(ctx, logger, c.pollInterval, c.timeout, func(ctx context.Context) (error, error) {
		status, err := c.InstanceStatus(ctx, instanceID)
		if err != nil {
			return nil, err
		}

		switch {
		case status == state:
			return nil, nil
		case status == "" && !seen:
			return fmt.Errorf("instance %s is not listed yet", instanceID), nil
		case status == "":
			return nil, fmt.Errorf("%w: %s is no longer reported", ErrUnreachableState, instanceID)
		case status == models.StateTerminated, status == models.StateShuttingDown && state != models.StateTerminated:
			return nil, fmt.Errorf("%w: %s is %s", ErrUnreachableState, instanceID, status)
		}

		seen = true
		return fmt.Errorf("instance %s is %s", instanceID, status), nil
	})
	if err != nil {
		return fmt.Errorf("error waiting for EC2 instance %s to be %s: %w", instanceID, state, err)
	}

	logger.Debug("instance reached target state")
	return nil
}

// Instances returns display records for every instance, not only the first of each reservation
func (c *InstanceController) Instances(ctx context.Context, region string) ([]models.InstanceInfo, error) {
	reservations, err := c.Reservations(ctx)
	if err != nil {
		return nil, err
	}

	instances := []models.InstanceInfo{}
	for _, reservation := range reservations {
		for _, instance := range reservation.Instances {
			info := models.InstanceInfo{
				InstanceID:       instance.ID,
				Name:             utils.GetName(instance.Tags),
				State:            instance.State,
				InstanceType:     instance.InstanceType,
				Region:           region,
				AvailabilityZone: instance.AvailabilityZone,
				PublicIP:         instance.PublicIP,
				LaunchTime:       instance.LaunchTime,
			}
			if instance.State == models.StateStopped {
				info.StoppedTime = utils.ParseStateTransitionTime(instance.StateTransitionReason)
			}
			instances = append(instances, info)
		}
	}

	return instances, nil
}

// findInstance scans the first instance of every reservation for instanceID
func (c *InstanceController) findInstance(ctx context.Context, instanceID string) (models.Instance, bool, error) {
	reservations, err := c.Reservations(ctx)
	if err != nil {
		return models.Instance{}, false, err
	}

	for _, reservation := range reservations {
		instance, ok := reservation.First()
		if ok && instance.ID == instanceID {
			return instance, true, nil
		}
	}

	return models.Instance{}, false, nil
}

func convertReservation(reservation types.Reservation) models.Reservation {
	result := models.Reservation{
		ID:        aws.ToString(reservation.ReservationId),
		Instances: make([]models.Instance, 0, len(reservation.Instances)),
	}
	for _, instance := range reservation.Instances {
		result.Instances = append(result.Instances, convertInstance(instance))
	}
	return result
}

func convertInstance(instance types.Instance) models.Instance {
	result := models.Instance{
		ID:                    aws.ToString(instance.InstanceId),
		PublicIP:              aws.ToString(instance.PublicIpAddress),
		InstanceType:          string(instance.InstanceType),
		LaunchTime:            instance.LaunchTime,
		StateTransitionReason: aws.ToString(instance.StateTransitionReason),
		Tags:                  utils.ConvertTags(instance.Tags),
	}
	if instance.State != nil {
		result.State = string(instance.State.Name)
	}
	if instance.Placement != nil {
		result.AvailabilityZone = aws.ToString(instance.Placement.AvailabilityZone)
	}
	return result
}
