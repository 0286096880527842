package utils

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/younsl/ec2ctl/internal/models"
)

// NameTagKey is the tag key EC2 uses for the console display name
const NameTagKey = "Name"

// ConvertTags converts EC2 tags to model tags, preserving order
func ConvertTags(tags []types.Tag) []models.Tag {
	if len(tags) == 0 {
		return nil
	}
	result := make([]models.Tag, 0, len(tags))
	for _, tag := range tags {
		result = append(result, models.Tag{
			Key:   aws.ToString(tag.Key),
			Value: aws.ToString(tag.Value),
		})
	}
	return result
}

// GetTagValue returns the value of a tag with the given key
func GetTagValue(tags []models.Tag, key string) string {
	for _, tag := range tags {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}

// GetName returns the value of the Name tag
func GetName(tags []models.Tag) string {
	return GetTagValue(tags, NameTagKey)
}

// FirstTagHasValue reports whether the first tag carries a non-empty value
func FirstTagHasValue(tags []models.Tag) bool {
	return len(tags) > 0 && tags[0].Value != ""
}

// NameTag builds the EC2 Name tag for the given value
func NameTag(name string) types.Tag {
	return types.Tag{
		Key:   aws.String(NameTagKey),
		Value: aws.String(name),
	}
}
