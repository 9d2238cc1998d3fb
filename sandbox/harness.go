package sandbox

import (
	"encoding/json"
	"fmt"
)

// pyLiteral renders s as a Python string literal. JSON string syntax is a
// subset of Python's, so marshalling is sufficient and handles quoting and
// control characters.
func pyLiteral(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// pyJSON renders v as a JSON literal safe to embed in generated Python via
// json.loads.
func pyJSON(v any) string {
	b, _ := json.Marshal(v)
	return pyLiteral(string(b))
}

// scaffoldHarness generates the Python script that drives one scaffold
// execution inside the container: it imports the mounted scaffold, feeds
// it the input, and prints the result on stdout. Diagnostics go to stderr
// via the logging module so stdout carries only the answer.
func scaffoldHarness(input string) string {
	return fmt.Sprintf(`
import sys
import logging
import os

log_level = getattr(logging, os.environ.get('LOG_LEVEL', 'INFO').upper(), logging.INFO)
logging.basicConfig(
    level=log_level,
    format='%%(asctime)s [%%(levelname)s] %%(message)s',
)

input_string = %s

logging.info('Running scaffold execution')
logging.info('Input length: %%d characters', len(input_string))
logging.info('Executor: %%s', os.environ.get('EXECUTOR_MODEL_SPEC', 'unset'))

try:
    sys.path.insert(0, '/workspace/scaffold')
    from scaffold import process_input

    result = process_input(input_string)
    print(result)
except Exception as e:
    logging.error('Error occurred: %%s', str(e), exc_info=True)
    sys.exit(1)
`, pyLiteral(input))
}

// judgeScript generates the Python judge that compiles the submitted
// program, runs it against each test case with captured stdio, and prints
// a single JSON report: {"results": [...]} on any run, {"error": msg} if
// the program fails to load. The memory limit here is the *requested*
// limit; the container ceiling is doubled so RLIMIT_AS fires first and an
// over-limit program fails its test case instead of OOM-killing the
// container.
func judgeScript(code string, testCases []TestCase, timeLimitSec float64, memoryMB int) string {
	return fmt.Sprintf(`
import json
import sys
import io
import signal
import resource


def _normalize_output(text):
    return text.replace('\r\n', '\n').replace('\r', '\n')


try:
    memory_limit_bytes = int(%d) * 1024 * 1024
    resource.setrlimit(resource.RLIMIT_AS, (memory_limit_bytes, memory_limit_bytes))
except Exception:
    pass  # Some systems don't support memory limits


def timeout_handler(signum, frame):
    raise TimeoutError("Code execution timed out")


signal.signal(signal.SIGALRM, timeout_handler)
signal.alarm(int(%g))

try:
    user_code = json.loads(%s)
    test_cases = json.loads(%s)

    try:
        compiled_code = compile(user_code, '<user_code>', 'exec')
    except SyntaxError as e:
        print(json.dumps({"error": str(e)}))
        sys.exit(0)

    results = []

    for i, test_case in enumerate(test_cases):
        test_input = test_case['input'].strip()
        expected_output = test_case['output'].strip()

        try:
            output_buffer = io.StringIO()
            error_buffer = io.StringIO()

            original_stdin = sys.stdin
            original_stdout = sys.stdout
            original_stderr = sys.stderr
            sys.stdin = io.StringIO(test_input)
            sys.stdout = output_buffer
            sys.stderr = error_buffer

            try:
                exec_globals = {'__builtins__': __builtins__}
                exec(compiled_code, exec_globals)
            finally:
                sys.stdin = original_stdin
                sys.stdout = original_stdout
                sys.stderr = original_stderr

            actual_output = output_buffer.getvalue().strip()
            stderr_output = error_buffer.getvalue().strip()

            normalized_actual = _normalize_output(actual_output)
            normalized_expected = _normalize_output(expected_output)

            if stderr_output:
                results.append({
                    "test_case": i,
                    "passed": False,
                    "error": stderr_output,
                    "input": test_input,
                    "expected": normalized_expected,
                    "actual": normalized_actual,
                })
            else:
                results.append({
                    "test_case": i,
                    "passed": normalized_actual == normalized_expected,
                    "input": test_input,
                    "expected": normalized_expected,
                    "actual": normalized_actual,
                })

        except Exception as e:
            results.append({
                "test_case": i,
                "passed": False,
                "error": str(e),
                "input": test_input,
                "expected": expected_output,
            })

    print(json.dumps({"results": results}))

except Exception as e:
    print(json.dumps({"error": str(e)}))

finally:
    signal.alarm(0)
`, memoryMB, timeLimitSec*float64(len(testCases))+1, pyLiteral(code), pyJSON(testCases))
}
