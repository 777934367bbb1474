package speckle

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tinytelemetry/carbondash/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   jsoniter.RawMessage `json:"data"`
	Errors graphQLErrors       `json:"errors"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphQLErrors []graphQLError

// err maps server-side GraphQL errors onto the pipeline's error kinds.
func (e graphQLErrors) err() error {
	msgs := make([]string, 0, len(e))
	kind := model.ErrServiceUnavailable
	for _, ge := range e {
		msgs = append(msgs, ge.Message)
		switch strings.ToUpper(ge.Extensions.Code) {
		case "UNAUTHENTICATED", "FORBIDDEN", "UNAUTHORIZED":
			kind = model.ErrAuthentication
		case "STREAM_NOT_FOUND", "NOT_FOUND":
			if kind != model.ErrAuthentication {
				kind = model.ErrNotFound
			}
		}
	}
	return fmt.Errorf("%w: %s", kind, strings.Join(msgs, "; "))
}

type userNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type collaboratorNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type streamNode struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Collaborators []collaboratorNode `json:"collaborators"`
	Branches      *struct {
		TotalCount int `json:"totalCount"`
	} `json:"branches"`
}

type streamCollection struct {
	TotalCount int          `json:"totalCount"`
	Items      []streamNode `json:"items"`
}

type branchNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type commitNode struct {
	ID                string    `json:"id"`
	Message           string    `json:"message"`
	SourceApplication string    `json:"sourceApplication"`
	AuthorName        string    `json:"authorName"`
	BranchName        string    `json:"branchName"`
	CreatedAt         time.Time `json:"createdAt"`
}

type activeUserData struct {
	ActiveUser *userNode `json:"activeUser"`
}

type streamListData struct {
	ActiveUser *struct {
		Streams streamCollection `json:"streams"`
	} `json:"activeUser"`
}

type streamSearchData struct {
	Streams streamCollection `json:"streams"`
}

type branchListData struct {
	Stream *struct {
		Branches struct {
			TotalCount int          `json:"totalCount"`
			Items      []branchNode `json:"items"`
		} `json:"branches"`
	} `json:"stream"`
}

type commitListData struct {
	Stream *struct {
		Commits struct {
			TotalCount int          `json:"totalCount"`
			Items      []commitNode `json:"items"`
		} `json:"commits"`
	} `json:"stream"`
}

func (n streamNode) toModel() model.Stream {
	s := model.Stream{
		ID:            n.ID,
		Name:          n.Name,
		Description:   n.Description,
		Collaborators: make([]model.Collaborator, 0, len(n.Collaborators)),
	}
	if n.Branches != nil {
		s.BranchCount = n.Branches.TotalCount
	}
	for _, c := range n.Collaborators {
		s.Collaborators = append(s.Collaborators, model.Collaborator{ID: c.ID, Name: c.Name, Role: c.Role})
	}
	return s
}

func streamsToModel(items []streamNode) []model.Stream {
	out := make([]model.Stream, 0, len(items))
	for _, n := range items {
		out = append(out, n.toModel())
	}
	return out
}
