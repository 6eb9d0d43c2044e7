package backend

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Model is a single blocking request/response call to a generative model.
type Model interface {
	Call(ctx context.Context, instruction, input string) (string, error)
}

// AgentModel adapts a go-agents agent configuration to Model.
// A fresh agent is created per call so concurrent callers share no client state.
type AgentModel struct {
	cfg gaconfig.AgentConfig
}

// NewAgentModel returns a Model backed by the provider described in cfg.
func NewAgentModel(cfg gaconfig.AgentConfig) *AgentModel {
	return &AgentModel{cfg: cfg}
}

// Call sends the instruction followed by the input as a single chat prompt.
func (m *AgentModel) Call(ctx context.Context, instruction, input string) (string, error) {
	a, err := agent.New(&m.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, instruction+"\n\n"+input)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return resp.Content(), nil
}
