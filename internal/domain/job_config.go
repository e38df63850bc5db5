package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidJobConfig = errors.New("invalid job config")

type ConfigType string

const (
	ConfigTypeSync            ConfigType = "sync"
	ConfigTypeResetConnection ConfigType = "reset_connection"
)

func (t ConfigType) JobType() JobType {
	if t == ConfigTypeResetConnection {
		return JobTypeResetConnection
	}
	return JobTypeSync
}

type JobSyncConfig struct {
	NamespaceDefinition             NamespaceDefinitionType `json:"namespaceDefinition,omitempty"`
	NamespaceFormat                 string                  `json:"namespaceFormat,omitempty"`
	Prefix                          string                  `json:"prefix,omitempty"`
	SourceConfiguration             json.RawMessage         `json:"sourceConfiguration"`
	SourceDockerImage               string                  `json:"sourceDockerImage"`
	DestinationConfiguration        json.RawMessage         `json:"destinationConfiguration"`
	DestinationDockerImage          string                  `json:"destinationDockerImage"`
	ConfiguredAirbyteCatalog        ConfiguredCatalog       `json:"configuredAirbyteCatalog"`
	OperationSequence               []Operation             `json:"operationSequence"`
	ResourceRequirements            *ResourceRequirements   `json:"resourceRequirements,omitempty"`
	SourceResourceRequirements      *ResourceRequirements   `json:"sourceResourceRequirements,omitempty"`
	DestinationResourceRequirements *ResourceRequirements   `json:"destinationResourceRequirements,omitempty"`
}

func (c JobSyncConfig) clone() JobSyncConfig {
	out := c
	out.SourceConfiguration = CloneRaw(c.SourceConfiguration)
	out.DestinationConfiguration = CloneRaw(c.DestinationConfiguration)
	out.ConfiguredAirbyteCatalog = c.ConfiguredAirbyteCatalog.Clone()
	out.OperationSequence = CloneOperations(c.OperationSequence)
	out.ResourceRequirements = c.ResourceRequirements.Clone()
	out.SourceResourceRequirements = c.SourceResourceRequirements.Clone()
	out.DestinationResourceRequirements = c.DestinationResourceRequirements.Clone()
	return out
}

type ResetSourceConfiguration struct {
	StreamsToReset []StreamDescriptor `json:"streamsToReset"`
}

type JobResetConnectionConfig struct {
	NamespaceDefinition      NamespaceDefinitionType  `json:"namespaceDefinition,omitempty"`
	NamespaceFormat          string                   `json:"namespaceFormat,omitempty"`
	Prefix                   string                   `json:"prefix,omitempty"`
	DestinationConfiguration json.RawMessage          `json:"destinationConfiguration"`
	DestinationDockerImage   string                   `json:"destinationDockerImage"`
	ConfiguredAirbyteCatalog ConfiguredCatalog        `json:"configuredAirbyteCatalog"`
	OperationSequence        []Operation              `json:"operationSequence"`
	ResourceRequirements     *ResourceRequirements    `json:"resourceRequirements,omitempty"`
	ResetSourceConfiguration ResetSourceConfiguration `json:"resetSourceConfiguration"`
}

func (c JobResetConnectionConfig) clone() JobResetConnectionConfig {
	out := c
	out.DestinationConfiguration = CloneRaw(c.DestinationConfiguration)
	out.ConfiguredAirbyteCatalog = c.ConfiguredAirbyteCatalog.Clone()
	out.OperationSequence = CloneOperations(c.OperationSequence)
	out.ResourceRequirements = c.ResourceRequirements.Clone()
	out.ResetSourceConfiguration.StreamsToReset = cloneSlice(c.ResetSourceConfiguration.StreamsToReset)
	return out
}

// JobConfig carries exactly one of a sync or a reset payload. The zero value
// is empty and cannot be serialized; use NewSyncJobConfig or
// NewResetConnectionJobConfig. Payloads are copied on the way in and on the
// way out, so a JobConfig never aliases caller state.
type JobConfig struct {
	configType ConfigType
	sync       *JobSyncConfig
	reset      *JobResetConnectionConfig
}

func NewSyncJobConfig(cfg JobSyncConfig) JobConfig {
	c := cfg.clone()
	return JobConfig{configType: ConfigTypeSync, sync: &c}
}

func NewResetConnectionJobConfig(cfg JobResetConnectionConfig) JobConfig {
	c := cfg.clone()
	return JobConfig{configType: ConfigTypeResetConnection, reset: &c}
}

func (j JobConfig) ConfigType() ConfigType {
	return j.configType
}

func (j JobConfig) IsZero() bool {
	return j.configType == ""
}

func (j JobConfig) Sync() (JobSyncConfig, bool) {
	if j.sync == nil {
		return JobSyncConfig{}, false
	}
	return j.sync.clone(), true
}

func (j JobConfig) ResetConnection() (JobResetConnectionConfig, bool) {
	if j.reset == nil {
		return JobResetConnectionConfig{}, false
	}
	return j.reset.clone(), true
}

type jobConfigWire struct {
	ConfigType      ConfigType                `json:"configType"`
	Sync            *JobSyncConfig            `json:"sync,omitempty"`
	ResetConnection *JobResetConnectionConfig `json:"resetConnection,omitempty"`
}

func (j JobConfig) MarshalJSON() ([]byte, error) {
	switch j.configType {
	case ConfigTypeSync, ConfigTypeResetConnection:
	default:
		return nil, fmt.Errorf("%w: config type %q", ErrInvalidJobConfig, j.configType)
	}
	return json.Marshal(jobConfigWire{
		ConfigType:      j.configType,
		Sync:            j.sync,
		ResetConnection: j.reset,
	})
}

func (j *JobConfig) UnmarshalJSON(data []byte) error {
	var w jobConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.ConfigType {
	case ConfigTypeSync:
		if w.Sync == nil || w.ResetConnection != nil {
			return fmt.Errorf("%w: sync config requires exactly the sync payload", ErrInvalidJobConfig)
		}
		*j = JobConfig{configType: ConfigTypeSync, sync: w.Sync}
	case ConfigTypeResetConnection:
		if w.ResetConnection == nil || w.Sync != nil {
			return fmt.Errorf("%w: reset_connection config requires exactly the resetConnection payload", ErrInvalidJobConfig)
		}
		*j = JobConfig{configType: ConfigTypeResetConnection, reset: w.ResetConnection}
	default:
		return fmt.Errorf("%w: config type %q", ErrInvalidJobConfig, w.ConfigType)
	}
	return nil
}
