// Package workflow drives jobs through the analysis pipeline. The queue is
// the source of truth: registered stages map entry statuses to handlers, and
// a small pool of workers polls for the oldest claimable job, runs the
// matching stage, and advances or fails the job. Stranded in-flight jobs are
// rolled back to their stage entry on startup.
package workflow
