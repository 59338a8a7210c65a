// Command fbgraph pages through a Graph API connection and prints every item
// as a line of JSON.
//
//	fbgraph -fields "id name" -pages 3 me/likes
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	sp "github.com/4nd3r5on/go-strings-parser"

	"github.com/facebookgo/fbgraph"
	"github.com/facebookgo/fbgraph/fbbatch"
	"github.com/facebookgo/fbgraph/jsonmap"
)

// parseFields parses a space separated list of field names.
func parseFields(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	fields, err := sp.Parse(s,
		sp.WithProcessFunc(
			func(element string) (processed string, skip bool, err error) {
				element = strings.TrimSpace(element)
				return element, element == "", nil
			},
		),
	)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fbgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	baseURL := fs.String("base-url", "", "Graph API base URL (default https://graph.facebook.com/)")
	accessToken := fs.String("access-token", "", "access token")
	fieldsStr := fs.String("fields", "", "space-separated fields to request (eg 'id name')")
	limit := fs.Uint64("limit", 0, "items per page")
	pages := fs.Int("pages", 0, "number of pages to print (default 1)")
	batch := fs.Bool("batch", false, "send requests through the batch API")
	lenient := fs.Bool("lenient", false, "skip values that cannot be mapped instead of failing")
	logLevel := fs.String("log-level", "", "debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("fbgraph: expected a single connection path")
	}

	conf := &Config{}
	if *configPath != "" {
		var err error
		if conf, err = LoadConfig(*configPath); err != nil {
			return err
		}
	} else {
		conf.applyDefaults()
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			conf.BaseURL = *baseURL
		case "access-token":
			conf.AccessToken = *accessToken
		case "limit":
			conf.Limit = *limit
		case "pages":
			conf.Pages = *pages
		case "batch":
			conf.Batch = *batch
		case "lenient":
			conf.Lenient = *lenient
		case "log-level":
			conf.LogLevel = *logLevel
		}
	})
	if *fieldsStr != "" {
		fields, err := parseFields(*fieldsStr)
		if err != nil {
			return fmt.Errorf("failed to parse fields argument: %w", err)
		}
		conf.Fields = fields
	}

	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %s", conf.LogLevel)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return fetch(conf, fs.Arg(0), logger, stdout)
}

func fetch(conf *Config, path string, logger *slog.Logger, out io.Writer) error {
	mapper := &jsonmap.Mapper{Logger: logger}
	if conf.Lenient {
		mapper.ErrorPolicy = jsonmap.Lenient
	}

	client := &fbgraph.Client{Mapper: mapper}
	if conf.BaseURL != "" {
		u, err := url.Parse(conf.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base url: %w", err)
		}
		client.BaseURL = u
	}

	var requester fbgraph.Requester = client
	params := []fbgraph.Param{fbgraph.ParamFields(conf.Fields...)}
	if conf.Limit != 0 {
		params = append(params, fbgraph.ParamLimit(conf.Limit))
	}
	if conf.Batch {
		bc := &fbbatch.Client{Client: client, AccessToken: conf.AccessToken, AppID: conf.AppID}
		defer bc.Stop()
		requester = bc
	} else {
		params = append(params, fbgraph.ParamAccessToken(conf.AccessToken))
	}

	first, err := fbgraph.URL(path, params...)
	if err != nil {
		return err
	}
	logger.Debug("fetching connection", "url", first, "pages", conf.Pages, "batch", conf.Batch)

	conn, err := fbgraph.FetchConnection[map[string]interface{}](requester, mapper, first)
	if err != nil {
		return err
	}
	for n := 0; n < conf.Pages && conn.HasNext(); n++ {
		items, err := conn.Next()
		if err != nil {
			return err
		}
		for _, item := range items {
			line, err := mapper.ToJSON(item, true)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
