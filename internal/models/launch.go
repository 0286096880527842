package models

// LaunchParameters describes a single instance launch
type LaunchParameters struct {
	ImageID          string   `mapstructure:"image-id"`
	InstanceType     string   `mapstructure:"instance-type"`
	KeyName          string   `mapstructure:"key-name"`
	SubnetID         string   `mapstructure:"subnet-id"`
	SecurityGroupIDs []string `mapstructure:"security-group-ids"`
	UserData         string   `mapstructure:"user-data"` // plain text, base64 encoded on launch
	MinCount         int32    `mapstructure:"min-count"`
	MaxCount         int32    `mapstructure:"max-count"`
}
