package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionStatusActive     ConnectionStatus = "active"
	ConnectionStatusInactive   ConnectionStatus = "inactive"
	ConnectionStatusDeprecated ConnectionStatus = "deprecated"
)

type NamespaceDefinitionType string

const (
	NamespaceDefinitionSource       NamespaceDefinitionType = "source"
	NamespaceDefinitionDestination  NamespaceDefinitionType = "destination"
	NamespaceDefinitionCustomFormat NamespaceDefinitionType = "customformat"
)

// Connection is the "standard sync": a source, a destination and the
// catalog of streams moved between them.
type Connection struct {
	ID                   uuid.UUID               `json:"connectionId"`
	Name                 string                  `json:"name"`
	NamespaceDefinition  NamespaceDefinitionType `json:"namespaceDefinition,omitempty"`
	NamespaceFormat      string                  `json:"namespaceFormat,omitempty"`
	Prefix               string                  `json:"prefix,omitempty"`
	SourceID             uuid.UUID               `json:"sourceId"`
	DestinationID        uuid.UUID               `json:"destinationId"`
	OperationIDs         []uuid.UUID             `json:"operationIds,omitempty"`
	Catalog              ConfiguredCatalog       `json:"catalog"`
	Status               ConnectionStatus        `json:"status"`
	ResourceRequirements *ResourceRequirements   `json:"resourceRequirements,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Scope is the queue key for jobs of this connection.
func (c *Connection) Scope() string {
	return c.ID.String()
}

func (c *Connection) CanSync() bool {
	return c.Status == ConnectionStatusActive || c.Status == ConnectionStatusInactive
}

func (c *Connection) IsDeprecated() bool {
	return c.Status == ConnectionStatusDeprecated
}

type SourceConnection struct {
	SourceID           uuid.UUID       `json:"sourceId"`
	SourceDefinitionID uuid.UUID       `json:"sourceDefinitionId"`
	WorkspaceID        uuid.UUID       `json:"workspaceId"`
	Name               string          `json:"name"`
	Configuration      json.RawMessage `json:"configuration"`
	Tombstone          bool            `json:"tombstone"`
}

type DestinationConnection struct {
	DestinationID           uuid.UUID       `json:"destinationId"`
	DestinationDefinitionID uuid.UUID       `json:"destinationDefinitionId"`
	WorkspaceID             uuid.UUID       `json:"workspaceId"`
	Name                    string          `json:"name"`
	Configuration           json.RawMessage `json:"configuration"`
	Tombstone               bool            `json:"tombstone"`
}

// ActorDefinition describes the connector image behind a source or destination.
type ActorDefinition struct {
	ID                   uuid.UUID                            `json:"id"`
	Name                 string                               `json:"name"`
	DockerRepository     string                               `json:"dockerRepository"`
	DockerImageTag       string                               `json:"dockerImageTag"`
	ResourceRequirements *ActorDefinitionResourceRequirements `json:"resourceRequirements,omitempty"`
}

func (d *ActorDefinition) Image() string {
	return fmt.Sprintf("%s:%s", d.DockerRepository, d.DockerImageTag)
}
