package domain

import (
	"github.com/google/uuid"
)

type OperatorType string

const (
	OperatorTypeNormalization OperatorType = "normalization"
	OperatorTypeDbt           OperatorType = "dbt"
)

type NormalizationOption string

const (
	NormalizationOptionBasic NormalizationOption = "basic"
)

type OperatorNormalization struct {
	Option NormalizationOption `json:"option"`
}

type OperatorDbt struct {
	GitRepoURL    string `json:"gitRepoUrl"`
	GitRepoBranch string `json:"gitRepoBranch,omitempty"`
	DockerImage   string `json:"dockerImage,omitempty"`
	DbtArguments  string `json:"dbtArguments,omitempty"`
}

// Operation is a post-sync step run after data lands in the destination.
type Operation struct {
	OperationID           uuid.UUID              `json:"operationId"`
	WorkspaceID           uuid.UUID              `json:"workspaceId"`
	Name                  string                 `json:"name"`
	OperatorType          OperatorType           `json:"operatorType"`
	OperatorNormalization *OperatorNormalization `json:"operatorNormalization,omitempty"`
	OperatorDbt           *OperatorDbt           `json:"operatorDbt,omitempty"`
	Tombstone             bool                   `json:"tombstone"`
}

func (o Operation) clone() Operation {
	out := o
	if o.OperatorNormalization != nil {
		n := *o.OperatorNormalization
		out.OperatorNormalization = &n
	}
	if o.OperatorDbt != nil {
		d := *o.OperatorDbt
		out.OperatorDbt = &d
	}
	return out
}

func CloneOperations(ops []Operation) []Operation {
	if ops == nil {
		return nil
	}
	out := make([]Operation, len(ops))
	for i, op := range ops {
		out[i] = op.clone()
	}
	return out
}
