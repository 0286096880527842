package aws

import (
	"encoding/base64"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/younsl/ec2ctl/internal/models"
)

// NewRunInstancesInput builds a RunInstances request from launch parameters.
// Counts default to one instance.
func NewRunInstancesInput(params models.LaunchParameters) (*ec2.RunInstancesInput, error) {
	if params.ImageID == "" {
		return nil, errors.New("image id is required")
	}

	minCount, maxCount := params.MinCount, params.MaxCount
	if minCount <= 0 {
		minCount = 1
	}
	if maxCount < minCount {
		maxCount = minCount
	}

	input := &ec2.RunInstancesInput{
		ImageId:  aws.String(params.ImageID),
		MinCount: aws.Int32(minCount),
		MaxCount: aws.Int32(maxCount),
	}

	if params.InstanceType != "" {
		input.InstanceType = types.InstanceType(params.InstanceType)
	}
	if params.KeyName != "" {
		input.KeyName = aws.String(params.KeyName)
	}
	if params.SubnetID != "" {
		input.SubnetId = aws.String(params.SubnetID)
	}
	if len(params.SecurityGroupIDs) > 0 {
		input.SecurityGroupIds = params.SecurityGroupIDs
	}
	if params.UserData != "" {
		input.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(params.UserData)))
	}

	return input, nil
}
