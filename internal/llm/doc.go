// Package llm provides the language model clients that turn a ledger summary into
// spending suggestions. It supports OpenAI, DeepSeek, Anthropic and the Claude Code
// CLI, with retry logic, rate limiting and response caching.
package llm
