package payment

import "fmt"

// ValidationError reports a buyer field that failed local validation.
// No network call is made for a request that fails validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GatewayError carries a rejection reported by the payment provider.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return "gateway rejected request: " + e.Message
}

// NetworkError wraps a transport failure talking to the gateway.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("payment gateway unreachable during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
