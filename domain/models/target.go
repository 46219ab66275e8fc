package models

import (
	"fmt"

	"github.com/cloudcopper/buildwatch/lib"
	"gopkg.in/yaml.v3"
)

// TargetKind is the value of the webhook "type" field
type TargetKind = string

const (
	KindMessage  TargetKind = "discord"
	KindWorkflow TargetKind = "github"
)

// DefaultWorkflowRef is the ref dispatched when a workflow target has no branch
const DefaultWorkflowRef = "main"

// Target is a notification target.
// The implementations are MessageTarget, WorkflowTarget and UnknownTarget.
type Target interface {
	Kind() TargetKind
	isTarget()
}

// MessageTarget posts a human readable announcement to a webhook url.
type MessageTarget struct {
	URL string `yaml:"url" validate:"required,url"`
}

func (*MessageTarget) Kind() TargetKind {
	return KindMessage
}

func (*MessageTarget) isTarget() {}

// String hides the url, as the webhook token is part of it
func (t *MessageTarget) String() string {
	return fmt.Sprintf("%v(%v)", KindMessage, lib.Redact(t.URL))
}

// WorkflowTarget triggers a workflow_dispatch of a remote repository.
type WorkflowTarget struct {
	Repo        string `yaml:"repo" validate:"required"`
	WorkflowID  string `yaml:"workflow_id" validate:"required"`
	AccessToken string `yaml:"access_token" validate:"required"`
	Branch      string `yaml:"branch"`
}

func (*WorkflowTarget) Kind() TargetKind {
	return KindWorkflow
}

func (*WorkflowTarget) isTarget() {}

func (t *WorkflowTarget) String() string {
	return fmt.Sprintf("%v(%v/%v@%v)", KindWorkflow, t.Repo, t.WorkflowID, t.Ref())
}

// Ref returns branch or DefaultWorkflowRef
func (t *WorkflowTarget) Ref() string {
	if t.Branch == "" {
		return DefaultWorkflowRef
	}
	return t.Branch
}

// UnknownTarget keeps a webhook of unsupported type,
// so dispatching it is reported instead of silently dropped.
type UnknownTarget struct {
	Type string
}

func (t *UnknownTarget) Kind() TargetKind {
	return t.Type
}

func (*UnknownTarget) isTarget() {}

func (t *UnknownTarget) String() string {
	return fmt.Sprintf("unknown(%v)", t.Type)
}

type Targets []Target

type targetConfig struct {
	Type        string `yaml:"type"`
	URL         string `yaml:"url"`
	Repo        string `yaml:"repo"`
	WorkflowID  string `yaml:"workflow_id"`
	AccessToken string `yaml:"access_token"`
	Branch      string `yaml:"branch"`
}

func (t *Targets) UnmarshalYAML(value *yaml.Node) error {
	var raw []targetConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	targets := make(Targets, 0, len(raw))
	for _, r := range raw {
		switch r.Type {
		case KindMessage:
			targets = append(targets, &MessageTarget{URL: r.URL})
		case KindWorkflow:
			targets = append(targets, &WorkflowTarget{
				Repo:        r.Repo,
				WorkflowID:  r.WorkflowID,
				AccessToken: r.AccessToken,
				Branch:      r.Branch,
			})
		default:
			targets = append(targets, &UnknownTarget{Type: r.Type})
		}
	}
	*t = targets
	return nil
}
