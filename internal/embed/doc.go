// Package embed burns a caption track into a video with ffmpeg's subtitles
// filter.
//
// Style parameters become an ASS force_style override: font name and size,
// primary colour (converted from RRGGBB to ASS BBGGRR order), alignment and
// vertical margin for the requested position, and bold, italic, or boxed
// treatment. The encode is a blocking subprocess whose exit code is checked;
// an advisory lock on the output path keeps concurrent jobs from writing the
// same file.
package embed
