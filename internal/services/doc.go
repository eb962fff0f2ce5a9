// Package services holds cross-cutting helpers shared by the pipeline stages
// and the SaaS client packages beneath it: sentinel error markers with a
// wrapping helper for stage-boundary classification, and context annotation
// for job, stage, and request correlation identifiers.
package services
