package entity

import "time"

// ResourceType tags the kind of cloud resource an inventory record refers to.
type ResourceType string

const (
	ResourceTypeEC2Instance ResourceType = "ec2_instance"
	ResourceTypeEBSVolume   ResourceType = "ebs_volume"
	ResourceTypeElasticIP   ResourceType = "elastic_ip"
	ResourceTypeRDSInstance ResourceType = "rds_instance"
)

// AllResourceTypes lists every resource type the auditor knows how to fetch.
var AllResourceTypes = []ResourceType{
	ResourceTypeEC2Instance,
	ResourceTypeEBSVolume,
	ResourceTypeElasticIP,
	ResourceTypeRDSInstance,
}

// ResourceMetadata carries the type-specific attributes of a resource.
// Only the fields relevant to the tagged type are populated.
type ResourceMetadata struct {
	InstanceClass string    `json:"instance_class,omitempty"`
	Engine        string    `json:"engine,omitempty"`
	SizeGB        int       `json:"size_gb,omitempty"`
	VolumeType    string    `json:"volume_type,omitempty"`
	AttachedTo    string    `json:"attached_to,omitempty"`
	LaunchTime    time.Time `json:"launch_time,omitempty"`
	Region        string    `json:"region,omitempty"`
}

// ResourceRecord is a point-in-time inventory snapshot of one cloud
// resource. Records are fetched fresh on every audit and never persisted.
type ResourceRecord struct {
	ResourceID   string           `json:"resource_id"`
	ResourceType ResourceType     `json:"resource_type"`
	State        string           `json:"state"`
	Metadata     ResourceMetadata `json:"metadata"`
}

// Finding flags one resource as idle or wasteful. A resource yields at most
// one Finding, under its single most relevant idle condition.
type Finding struct {
	ResourceID             string       `json:"resource_id"`
	ResourceType           ResourceType `json:"resource_type"`
	Reason                 string       `json:"reason"`
	Severity               Severity     `json:"severity"`
	EstimatedMonthlySaving float64      `json:"estimated_monthly_saving"`
}
