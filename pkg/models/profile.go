package models

import "strings"

// AgentProfile describes one registered worker: its identity, competence,
// permitted tools, and backend binding. Profiles are immutable after
// registration.
type AgentProfile struct {
	// Name is the unique identity of the worker.
	Name string `json:"agent_name"`
	// Backstory is the persona text given to the capability provider.
	Backstory string `json:"backstory"`
	// TaskDescription states what this worker is supposed to do.
	TaskDescription string `json:"task"`
	// Specializations lists the tags used for subtask matching. Order is
	// irrelevant for matching.
	Specializations []string `json:"specialization"`
	// Tools lists the names of tools this worker may invoke.
	Tools []string `json:"tools,omitempty"`
	// Memory indicates whether this worker retains cross-call state.
	Memory bool `json:"memory"`
	// Backend names the capability provider this worker is bound to.
	Backend string `json:"backend,omitempty"`
}

// Validate checks that the profile is usable for registration.
func (p AgentProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return NewError(ErrCodeValidation, "agent profile has empty name")
	}
	if len(p.Specializations) == 0 {
		return Errorf(ErrCodeValidation, "agent %q has no specialization tags", p.Name)
	}
	for _, tag := range p.Specializations {
		if strings.TrimSpace(tag) == "" {
			return Errorf(ErrCodeValidation, "agent %q has an empty specialization tag", p.Name)
		}
	}
	return nil
}

// AllowsTool returns true if the profile permits invoking the named tool.
func (p AgentProfile) AllowsTool(name string) bool {
	for _, t := range p.Tools {
		if t == name {
			return true
		}
	}
	return false
}
