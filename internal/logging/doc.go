// Package logging configures slog for shopindex.
// Without a log file, JSON logs go to stderr only. With --debug or
// logging.file_path set, logs are also written to a size-rotated file under
// ~/.shopindex/logs/ that `shopindex logs` can tail.
package logging
