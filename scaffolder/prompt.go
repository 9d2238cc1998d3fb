package scaffolder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scaffoldlab/scaffbox/dataset"
	"github.com/scaffoldlab/scaffbox/scaffold"
)

// The instruction blocks are kept close to plain prose on purpose; the
// scaffolder model sees them verbatim.
var scaffolderInstructions = fmt.Sprintf(`Your task is to write a Python scaffold that maximizes its score on held-out examples.

Basic code template:
%[1]spython
import logging
from llm_executor import execute_llm

def process_input(input_string: str) -> str:
    logging.info("Starting to process input")

    try:
        # Your logic here - you can call execute_llm() as needed
        return execute_llm("Your prompt here")
    except Exception as e:
        logging.error(f"Error occurred: {str(e)}", exc_info=True)
        raise
%[1]s

Tips:
1. Your script must implement a function called %[2]sprocess_input(input_string: str) -> str%[2]s
2. You have access to an executor LLM through a library called %[2]sllm_executor%[2]s
3. The llm_executor has a function: execute_llm(prompt: str, system_prompt: Optional[str] = None) -> str
4. Your script should be self-contained and runnable
5. Avoid bloated or disorganized code
6. Include proper error handling
7. Make sure your error messages include all information that would help debug the error
8. Use Python's logging module for logging important events, errors, and debug information
9. Enclose your code in %[1]spython tags

Based on the scaffold's output, you will get a score from 0 to 1.
In the example(s) above, returning <expected-output> would get you a score of 1.
Your code will automatically get a score of 0 if it takes any more than <timeout> seconds to run, so you may want to implement measures to ensure that it stops before that point.`, "```", "`")

const evolutionInstructions = `There is an attempted Python scaffold in <code>.
You can use this scaffold as a reference or write something completely different.
You can see the output of <code> in <actual-output> and its execution log in <execution-log>.
Finally, you can see the score assigned to <actual-output> in <score>.`

const codeforcesInstructions = `The process_input function MUST return Python code. Do NOT return the output of the code, only the code itself. The code returned by process_input should use input() to read the input, and print() to print the output.`

func domainInstructions(domain string) string {
	if domain == "codeforces" {
		return codeforcesInstructions
	}
	return ""
}

// expectedOutput pulls the expected-solution field out of scoring data.
// Domains store it under different keys.
func expectedOutput(scoringData map[string]any) string {
	for _, key := range []string{"solution", "correct_answer"} {
		if v, ok := scoringData[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return ""
}

type xmlField struct {
	tag   string
	value string
}

func exampleXML(idx int, fields []xmlField) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<example-%d>\n", idx)
	for _, f := range fields {
		fmt.Fprintf(&b, "    <%s>%s</%s>\n", f.tag, f.value, f.tag)
	}
	fmt.Fprintf(&b, "</example-%d>", idx)
	return b.String()
}

func generateExamplesXML(examples []dataset.Example) string {
	blocks := make([]string, 0, len(examples))
	for i, ex := range examples {
		blocks = append(blocks, exampleXML(i+1, []xmlField{
			{"input", ex.Input},
			{"expected_output", expectedOutput(ex.ScoringData)},
		}))
	}
	return strings.Join(blocks, "\n")
}

func evolveExamplesXML(runs []scaffold.RunData) string {
	blocks := make([]string, 0, len(runs))
	for i, run := range runs {
		blocks = append(blocks, exampleXML(i+1, []xmlField{
			{"input", run.Example.Input},
			{"expected_output", expectedOutput(run.Example.ScoringData)},
			{"actual_output", run.ActualOutput},
			{"execution_log", run.ExecutionLog},
			{"score", strconv.FormatFloat(run.Score, 'g', -1, 64)},
		}))
	}
	return strings.Join(blocks, "\n")
}

// GeneratePrompt builds the initial-population prompt from training
// examples.
func GeneratePrompt(examples []dataset.Example, domain string, timeoutSec int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<timeout>%d</timeout>\n", timeoutSec)
	b.WriteString(generateExamplesXML(examples))
	b.WriteString("\n\n")
	b.WriteString(scaffolderInstructions)
	if extra := domainInstructions(domain); extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
	}
	return b.String()
}

// EvolvePrompt builds the evolution prompt. All runs come from the same
// parent scaffold; its source appears once in the <code> block.
func EvolvePrompt(runs []scaffold.RunData, domain string, timeoutSec int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<code>```python\n%s\n```</code>\n", runs[0].Code)
	fmt.Fprintf(&b, "<timeout>%d</timeout>\n", timeoutSec)
	b.WriteString(evolveExamplesXML(runs))
	b.WriteString("\n\n")
	b.WriteString(scaffolderInstructions)
	if extra := domainInstructions(domain); extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
	}
	b.WriteString("\n")
	b.WriteString(evolutionInstructions)
	return b.String()
}
