package config

import (
	"fmt"
	"io"
	"runtime"
)

const helpText = `
urldiff - streaming near-duplicate URL filter

USAGE:
  urldiff [options] [file ...]
  cat urls.txt | urldiff [options]

  Reads one URL per line from the given files in order ("-" or no file
  means stdin) and prints only URLs that differ enough from every URL
  already printed. Scores and a summary go to stderr.

MATCHING OPTIONS:
  -t, --threshold float        Duplicate when distance < threshold (default: 1)
  -w, --window int             Sorted neighbours probed on each side (default: 8)
  -m, --query-mode string      Query comparison: keys or values (default: keys)
  -p, --path-strategy string   Path comparison: positional or ratio (default: positional)
      --path-ratio-scale float Maximum path penalty of the ratio strategy (default: 4)
      --ignore-tracking        Ignore utm_*, gclid, fbclid, session ids and cache busters
      --ignore-param key       Ignore a query parameter (repeatable)

INPUT OPTIONS:
  -s, --scope domain           Only process URLs of this domain and its subdomains
                               (repeatable; *.example.com matches the whole
                               registrable domain)

OUTPUT OPTIONS:
  -q, --quiet                  No diagnostics on stderr
      --raw                    Plain log lines instead of styled output
      --raw-format string      Raw diagnostics format: text or json (default: text)
  -S, --show-suppressed        Also report suppressed URLs
      --log-level string       debug, info, warn or error (default: info)
      --log-file path          Write JSON logs to a rotated file instead of stderr

CONFIG:
  -c, --config path            YAML config file (keys match the ENV names below,
                               lowercased without prefix; log level and file
                               live under "log:")

INFO:
  -v, --version                Print version information and exit
  -h, --help                   Show this help message

DISTANCE:
  scheme, credentials, host, port and fragment count 1 each when different,
  plus the path distance, plus 1 for a differing file extension, plus twice
  the query distance (differing keys plus the key count difference).

EXAMPLES:
  Deduplicate crawler output:
    urldiff crawl.txt > unique.txt

  Treat different parameter values as different pages:
    urldiff -m values crawl.txt

  Looser matching, ignoring tracking parameters:
    urldiff -t 3 --ignore-tracking crawl.txt

  Keep only one target and log as JSON:
    urldiff -s example.com --raw --raw-format json crawl.txt

ENVIRONMENT VARIABLES:
  URLDIFF_CONFIG                Config file path
  URLDIFF_THRESHOLD=2           Threshold
  URLDIFF_WINDOW=16             Window
  URLDIFF_QUERY_MODE=values     Query mode
  URLDIFF_PATH_STRATEGY=ratio   Path strategy
  URLDIFF_PATH_RATIO_SCALE=4    Ratio strategy scale
  URLDIFF_IGNORE_TRACKING=true  Ignore tracking parameters
  URLDIFF_IGNORE_PARAMS=a,b     Ignored parameters (comma list)
  URLDIFF_SCOPE=a.com,b.com     Scope (comma list)
  URLDIFF_QUIET=true            Quiet
  URLDIFF_RAW=true              Raw diagnostics
  URLDIFF_RAW_FORMAT=json       Raw format
  URLDIFF_SHOW_SUPPRESSED=true  Report suppressed URLs
  URLDIFF_LOG_LEVEL=debug       Log level
  URLDIFF_LOG_FILE=/path        Log file

  Precedence: defaults < config file < environment < flags.

EXIT CODES:
  0    success
  1    input or output failure
  2    invalid configuration
  130  interrupted (output up to the last accepted URL is kept)
`

// PrintHelp writes the help message to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer, version, commit, date string) {
	fmt.Fprintf(w, "urldiff %s\n", version)
	fmt.Fprintf(w, "  Commit:  %s\n", commit)
	fmt.Fprintf(w, "  Built:   %s\n", date)
	fmt.Fprintf(w, "  Go:      %s\n", getGoVersion())
}

func getGoVersion() string {
	return runtime.Version()
}
