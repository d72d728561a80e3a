//go:build llama

package llm

// cgo link directives for the in-process llama runner.
// - rpath of $ORIGIN so the runtime loader finds libllama.so and libggml*.so
//   in the same directory as the built Go binary (./bin).
// - -L${SRCDIR}/../../bin so the linker finds libllama.so at link time when
//   building the 'llama' variant.

/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
