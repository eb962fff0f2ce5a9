// Package browser drives headless Chrome to capture watch-page evidence:
// a viewport screenshot plus title and channel metadata. Page interactions
// go through ordered capability probes so selector churn degrades gracefully
// instead of failing jobs.
package browser
