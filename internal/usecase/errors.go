package usecase

import "fmt"

// ConfigurationError: problema de cadastro/configuração da empresa
// (sem página conectada, sem token). Volta pro chamador como 4xx.
type ConfigurationError struct {
	Code    string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

// PersistenceError: o banco falhou. Volta como 5xx porque provavelmente
// é infra, não esse request.
type PersistenceError struct {
	Code    string
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsPersistenceError(err error) bool {
	_, ok := err.(*PersistenceError)
	return ok
}

// MalformedEventError: evento de webhook sem campo obrigatório.
// Descartado com log; retentar não resolve payload quebrado.
type MalformedEventError struct {
	Field string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("evento de leadgen sem o campo %q", e.Field)
}
