// Package skills provides the wrench skill system: named capabilities with a
// declared parameter list, a JSON schema derived from it, and an executor.
// Skills are registered once at startup and dispatched by name through the
// Registry, which validates raw model-supplied arguments before execution.
package skills
