// Package scheduler proposes a donut round for every chat with a roster
// on a weekly cadence, prompting the chat to confirm it.
package scheduler
