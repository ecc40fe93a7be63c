package dspgraph

import "fmt"

func errUnknownParam(name string) error {
	return fmt.Errorf("dspgraph: unknown parameter %q", name)
}
