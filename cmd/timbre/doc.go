// Command timbre drives audio-analysis pipeline runs: composing
// components from configuration, executing them over an input tree, and
// inspecting the run ledger.
package main
