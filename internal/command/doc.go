// Package command is the process boundary to the external collaborators
// (k3d, gcloud, kubectl, argocd, kubectl-kuttl).
//
// Every pipeline stage that shells out does so through the Runner interface,
// so its sequencing logic can be tested against a FakeRunner without any of
// the tools installed. The exec-backed implementation captures stdout and
// stderr separately and honors context cancellation.
package command
