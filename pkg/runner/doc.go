/*
Package runner implements the interactive question loop of grounded.

It reads one question at a time from a pluggable IOHandler, sanitizes it,
asks the pipeline and writes the resulting state back through the same
handler. Two handlers are provided: TextHandler for terminals and
JSONHandler for newline-delimited JSON over pipes.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithLogger(logger),
	)

	if err := r.Run(ctx, pipeline); err != nil {
		log.Fatal(err)
	}
*/
package runner
