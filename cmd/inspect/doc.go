// Inspect is a CLI that reviews a single source file with an LLM.
//
// The file is sent to the model twice, once asking for bugs and once asking
// for optimization opportunities. Findings below the confidence threshold are
// dropped, the rest are graded by severity, and the report is printed and
// saved as JSON and Markdown.
//
// Usage:
//
//	inspect review app.py                       # review with the configured model
//	inspect review app.py --format markdown     # print Markdown instead of text
//	inspect review app.py --fail-on high        # exit 1 on high or critical bugs
//	inspect review app.py --compare openai:gpt-4.1-mini,ollama:deepseek-r1
//	inspect models doctor --provider anthropic  # check credentials
//
// Exit codes: 0 success, 1 findings at or above --fail-on, 2 usage error,
// 3 authentication error, 4 runtime error.
package main
