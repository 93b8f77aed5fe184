// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (identities, certificates, session states), the
// contracts of the external collaborators (gpg, trezor-gpg, agent, shell)
// and the error kinds surfaced to the CLI.
package domain
