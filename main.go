package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/greyh4t/hackpool"
	"github.com/greyh4t/logmerge/codec"
	"github.com/greyh4t/logmerge/joiner"
	"github.com/greyh4t/logmerge/logfile"
	"github.com/greyh4t/logmerge/logger"
	"github.com/greyh4t/logmerge/merger"
	"github.com/greyh4t/logmerge/processbar"
	"github.com/greyh4t/logmerge/ts"
	"github.com/greyh4t/logmerge/zhttp"
	"github.com/guonaihong/clop"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var (
	ZHTTP *zhttp.Zhttp
	BAR   *processbar.Bar
	conf  *Conf
)

type Conf struct {
	Count       int           `clop:"-n; --count" usage:"number of log files, read as <prefix><N><suffix> for N = 0..count-1. Read from stdin when not set" default:"-1"`
	Prefix      string        `clop:"-p; --prefix" usage:"log file name prefix" default:"chess_out"`
	Suffix      string        `clop:"-S; --suffix" usage:"log file name suffix" default:".txt"`
	Dir         string        `clop:"-d; --dir" usage:"directory holding the log files" default:"."`
	Inputs      []string      `clop:"-i; --input; greedy" usage:"explicit log files or http(s) urls, in stream index order"`
	OutFile     string        `clop:"-o; --out-file" usage:"out file, - for stdout. .sz .lz4 .zst are compressed" default:"log.txt"`
	Connections int           `clop:"-c; --connections" usage:"number of parallel downloads for remote logs" default:"4"`
	Retry       int           `clop:"-r; --retry" usage:"number of retries" default:"3"`
	Timeout     time.Duration `clop:"-t; --timeout" usage:"timeout" default:"60s"`
	Proxy       string        `clop:"--proxy" usage:"proxy. Example: http://127.0.0.1:8080"`
	Headers     []string      `clop:"-H; --header; greedy" usage:"http header. Example: Authorization:Bearer xyz"`
	SkipVerify  bool          `clop:"-s; --skipverify" usage:"skip verify server certificate"`
	List        bool          `clop:"-l; --list" usage:"list records and time range of every log instead of merging"`
	Quiet       bool          `clop:"-q; --quiet" usage:"don't show the progress bar"`
	JSON        bool          `clop:"--json" usage:"log in json"`
	Verbose     bool          `clop:"-v; --verbose" usage:"debug logging"`
	headers     map[string]string
}

func checkConf() error {
	if conf.Count < -1 {
		return fmt.Errorf("number of log files must not be negative: %d", conf.Count)
	}

	if conf.Prefix == "" {
		conf.Prefix = "chess_out"
	}

	if conf.Dir == "" {
		conf.Dir = "."
	}

	if conf.OutFile == "" {
		conf.OutFile = "log.txt"
	}

	if conf.Connections <= 0 {
		conf.Connections = 4
	}

	if conf.Retry <= 0 {
		conf.Retry = 1
	}

	if conf.Timeout <= 0 {
		conf.Timeout = time.Second * 60
	}

	return nil
}

func parseHeaders() {
	conf.headers = map[string]string{}
	for _, header := range conf.Headers {
		s := strings.SplitN(header, ":", 2)
		key := strings.TrimRight(s[0], " ")
		if len(s) == 2 {
			conf.headers[key] = strings.TrimLeft(s[1], " ")
		} else {
			conf.headers[key] = ""
		}
	}
}

func setupLogger() {
	if conf.JSON {
		logger.SetJsonWriter()
	} else {
		logger.SetConsoleWriter(!term.IsTerminal(int(os.Stderr.Fd())))
	}

	if conf.Verbose {
		logger.SetLevel(zerolog.DebugLevel)
	}
}

// promptCount asks for the number of log files once, the way the tool
// always has when run by hand.
func promptCount(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, "Number of log files? ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("invalid number of log files: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("number of log files must not be negative: %d", n)
	}
	return n, nil
}

func inputNames() ([]string, error) {
	return inputNamesFrom(os.Stdin, term.IsTerminal(int(os.Stdin.Fd())))
}

// inputNamesFrom reads the count from in when -n was not given. The prompt is
// only shown to a terminal.
func inputNamesFrom(in io.Reader, interactive bool) ([]string, error) {
	if len(conf.Inputs) > 0 {
		return conf.Inputs, nil
	}

	if conf.Count < 0 {
		var prompt io.Writer = io.Discard
		if interactive {
			prompt = os.Stderr
		}

		n, err := promptCount(in, prompt)
		if err != nil {
			return nil, err
		}
		conf.Count = n
	}

	names := make([]string, conf.Count)
	for i := range names {
		names[i] = filepath.Join(conf.Dir, conf.Prefix+strconv.Itoa(i)+conf.Suffix)
	}
	return names, nil
}

func isRemote(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

type input struct {
	name string
	size int64
	raw  io.ReadCloser
	dec  io.ReadCloser
}

func (in *input) Close() error {
	if in.dec != nil {
		in.dec.Close()
	}
	return in.raw.Close()
}

func closeInputs(inputs []*input) {
	for _, in := range inputs {
		if in != nil {
			in.Close()
		}
	}
}

// openInputs opens every log in order. Remote logs are downloaded in parallel
// before anything is read.
func openInputs(names []string) ([]*input, error) {
	remote := map[int]string{}
	for i, name := range names {
		if isRemote(name) {
			remote[i] = name
		}
	}

	fetched, err := fetchRemote(remote)
	if err != nil {
		return nil, err
	}

	inputs := make([]*input, len(names))
	for i, name := range names {
		if data, ok := fetched[i]; ok {
			inputs[i] = &input{
				name: name,
				size: int64(len(data)),
				raw:  io.NopCloser(bytes.NewReader(data)),
			}
			continue
		}

		f, err := os.Open(name)
		if err != nil {
			closeInputs(inputs)
			return nil, err
		}

		in := &input{name: name, raw: f}
		if info, err := f.Stat(); err == nil {
			in.size = info.Size()
		}
		inputs[i] = in
	}

	return inputs, nil
}

func fetchRemote(urls map[int]string) (map[int][]byte, error) {
	data := map[int][]byte{}
	if len(urls) == 0 {
		return data, nil
	}

	var (
		mut      sync.Mutex
		firstErr error
	)

	pool := hackpool.New(conf.Connections, download)

	go func() {
		for id, u := range urls {
			id, u := id, u
			pool.Push(u, conf.headers, conf.Retry, func(body []byte, err error) {
				mut.Lock()
				defer mut.Unlock()

				if err != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("download %s: %w", u, err)
					}
					return
				}

				logger.Log().Debug().Str("url", u).Int("bytes", len(body)).Msg("downloaded")
				data[id] = body
			})
		}
		pool.CloseQueue()
	}()

	pool.Run()

	return data, firstErr
}

func download(args ...interface{}) {
	url := args[0].(string)
	headers := args[1].(map[string]string)
	retry := args[2].(int)
	fn := args[3].(func([]byte, error))

	data, err := ZHTTP.Fetch(url, headers, retry)
	fn(data, err)
}

func showProgress() bool {
	return !conf.Quiet && term.IsTerminal(int(os.Stderr.Fd()))
}

func newJoiner(outFile string) (joiner.Joiner, error) {
	if outFile == "-" {
		return joiner.NewWriter(os.Stdout), nil
	}
	return joiner.NewFile(outFile)
}

func mergeLogs(names []string, outFile string) (merger.Stats, error) {
	inputs, err := openInputs(names)
	if err != nil {
		return merger.Stats{}, err
	}
	defer closeInputs(inputs)

	var total int64
	for _, in := range inputs {
		total += in.size
	}

	BAR = nil
	if showProgress() {
		BAR = processbar.New(total)
		BAR.AutoFlush(time.Millisecond * 200)
		defer BAR.Finish()
	}

	sources := make([]merger.Source, len(inputs))
	firsts := make([]float64, len(inputs))
	for i, in := range inputs {
		var r io.Reader = in.raw
		if BAR != nil {
			r = BAR.Counter(r)
		}
		in.dec = codec.NewReader(in.name, r)

		reader, first, err := logfile.Open(in.dec, in.name)
		if err != nil {
			return merger.Stats{}, err
		}
		sources[i] = reader
		firsts[i] = first
	}

	m, err := merger.New(sources, firsts)
	if err != nil {
		return merger.Stats{}, err
	}

	j, err := newJoiner(outFile)
	if err != nil {
		return merger.Stats{}, err
	}
	if codec.Compressed(outFile) {
		logger.Log().Debug().Str("out", outFile).Msg("compressing output")
	}

	stats, err := m.Run(j)
	if merr := j.Merge(); err == nil {
		err = merr
	}

	return stats, err
}

func listLogs(names []string, out io.Writer) error {
	inputs, err := openInputs(names)
	if err != nil {
		return err
	}
	defer closeInputs(inputs)

	var list []string
	for i, in := range inputs {
		in.dec = codec.NewReader(in.name, in.raw)

		stats, err := logfile.Scan(in.dec, in.name)
		if err != nil {
			return err
		}

		list = append(list, fmt.Sprintf("Stream: %-3d Records: %-7d First: %-12s Last: %-12s Disorder: %-4d File: %s",
			i, stats.Records, ts.Format(stats.First), ts.Format(stats.Last), stats.Disorder, stats.Name))
	}

	_, err = fmt.Fprintln(out, strings.Join(list, "\n"))
	return err
}

func main() {
	conf = &Conf{}
	clop.CommandLine.SetExit(true)
	clop.SetVersion("1.0.0")
	clop.Bind(conf)

	setupLogger()

	err := checkConf()
	if err != nil {
		logger.Log().Fatal().Err(err).Msg("Invalid arguments")
	}

	if len(conf.Headers) > 0 {
		parseHeaders()
	}

	ZHTTP, err = zhttp.New(conf.Timeout, conf.Proxy, conf.SkipVerify)
	if err != nil {
		logger.Log().Fatal().Err(err).Msg("Initialization failed")
	}

	names, err := inputNames()
	if err != nil {
		clop.Usage()
		logger.Log().Fatal().Err(err).Msg("Invalid arguments")
	}

	if conf.List {
		err = listLogs(names, os.Stdout)
		if err != nil {
			logger.Log().Fatal().Err(err).Msg("Read log files failed")
		}
		return
	}

	if len(names) == 0 {
		logger.Log().Warn().Msg("No log files to merge, writing an empty log")
	}

	start := time.Now()
	stats, err := mergeLogs(names, conf.OutFile)
	if err != nil {
		logger.Log().Fatal().Err(err).Str("out", conf.OutFile).Int("records", stats.Records).Msg("Merge failed")
	}

	logger.Log().Info().
		Int("streams", len(names)).
		Int("records", stats.Records).
		Dur("took", time.Since(start)).
		Msgf("Saved to %s", conf.OutFile)
}
