// Package audio turns media files into fixed-rate mono waveforms.
//
// Decoding goes through ffmpeg (any container) or straight through the WAV
// reader, then downmix and resampling bring every waveform to the configured
// rate so that buffered segments can be concatenated.
package audio
