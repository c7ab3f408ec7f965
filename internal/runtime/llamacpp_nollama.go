//go:build !llama

package runtime

import "errors"

// OpenLlama is unavailable in builds without the llama.cpp bindings.
func OpenLlama(string, Strategy, int) (Engine, error) {
	return nil, errors.New("qwend was built without llama.cpp support (rebuild with -tags llama)")
}
