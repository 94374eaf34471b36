// Package plugins provides the built-in skills (shell, files, git, Home
// Assistant, facts) and the command skills declared in the skills directory.
package plugins
