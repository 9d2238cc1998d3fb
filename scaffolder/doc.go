// Package scaffolder produces candidate scaffold programs by prompting the
// scaffolder LLM.
//
// Two paths share a prompt format and code extraction. Generate builds the
// initial prompt from training examples; Evolve additionally shows the
// parent scaffold's source, one execution's actual output and log, and the
// score it earned, asking the model for a complete replacement program.
//
// Usage:
//
//	gen := scaffolder.New(client, logger, scaffolder.WithDomain("crosswords"))
//	result, err := gen.Generate(ctx, examples, 0)
//	if err != nil {
//	    // scaffolder.ErrNoCode means the model answered without a program
//	}
package scaffolder
