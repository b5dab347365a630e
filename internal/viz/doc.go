// Package viz renders a live terminal view of a running batch. The lead
// vehicle's altitude is charted while the full batch steps in real time;
// playback can be paused and reset from the keyboard.
package viz
