// Package llm backs the classification oracle with a hosted language model.
// It supports OpenAI and Anthropic, and wraps every call with rate limiting,
// retry with backoff, a circuit breaker, and a response cache.
package llm
