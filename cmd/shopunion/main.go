package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/shopunion/client/internal/domain/affiliate"
	"github.com/shopunion/client/internal/infrastructure/config"
	"github.com/shopunion/client/internal/infrastructure/logger"
	"github.com/shopunion/client/internal/infrastructure/platform"
	"github.com/shopunion/client/internal/infrastructure/telemetry"
)

// options holds the parsed command line
type options struct {
	configPath string
	platform   string
	logLevel   string

	keyword    string
	page       int
	pageSize   int
	adzoneID   string
	materialID string
	itemIDs    string
	content    string
	url        string
	pid        string
	goodsSigns string
	goodsIDs   string
	params     string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shopunion", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: search ./shopunion.toml, ./config, /etc/shopunion)")
	fs.StringVar(&opts.platform, "platform", "", "Platform: taobao|tb, pinduoduo|pdd, jd")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	fs.StringVar(&opts.keyword, "keyword", "", "Search keyword")
	fs.IntVar(&opts.page, "page", 0, "Page number (default 1)")
	fs.IntVar(&opts.pageSize, "page-size", 0, "Page size (default 20, max 100)")
	fs.StringVar(&opts.adzoneID, "adzone", "", "Taobao adzone_id override")
	fs.StringVar(&opts.materialID, "material-id", "", "Taobao material_id or JD materialId")
	fs.StringVar(&opts.itemIDs, "item-ids", "", "Comma separated Taobao num_iids or JD sku ids")
	fs.StringVar(&opts.content, "content", "", "Taobao tao password to convert")
	fs.StringVar(&opts.url, "url", "", "Product URL to convert")
	fs.StringVar(&opts.pid, "pid", "", "Pinduoduo pid override")
	fs.StringVar(&opts.goodsSigns, "goods-sign", "", "Comma separated Pinduoduo goods_sign values")
	fs.StringVar(&opts.goodsIDs, "goods-id", "", "Comma separated Pinduoduo goods ids")
	fs.StringVar(&opts.params, "params", "{}", "JSON object of business params for the call command")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(fs)
		return 2
	}
	command := rest[0]

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if opts.logLevel != "" {
		logCfg.Level = opts.logLevel
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	code, err := affiliate.ParsePlatformCode(opts.platform)
	if err != nil {
		log.Error("Invalid platform", zap.String("platform", opts.platform), zap.Error(err))
		return 2
	}

	providers, err := telemetry.Setup(context.Background(), cfg.Exporter(), log)
	if err != nil {
		log.Error("Failed to initialize telemetry", zap.Error(err))
		return 1
	}
	defer func() {
		_ = providers.Shutdown(context.Background())
	}()

	metrics, err := telemetry.NewGlobalAPIMetrics()
	if err != nil {
		log.Warn("Metrics disabled", zap.Error(err))
	}

	httpClient := platform.NewRestyHTTPClient(cfg.HTTP.Transport(),
		platform.WithLogger(log),
		platform.WithMetrics(metrics),
	)
	union := platform.NewUnionClient(cfg.Platforms, httpClient)

	client, err := union.Platform(code)
	if err != nil {
		log.Error("Unsupported platform", zap.Error(err))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, _ = logger.WithPlatform(ctx, log, code.String())

	log.Debug("Running command",
		zap.String("command", command),
		zap.String("platform", code.String()),
	)

	res, err := execute(ctx, client, command, rest[1:], &opts)
	if err != nil {
		logFailure(log, err)
		if errors.Is(err, affiliate.ErrInvalidParams) {
			return 2
		}
		return 1
	}

	if err := writeResult(stdout, res); err != nil {
		log.Error("Failed to write result", zap.Error(err))
		return 1
	}
	return 0
}

// loadConfig reads an explicit file or searches the default paths
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// execute maps a command onto the platform operation
func execute(ctx context.Context, client affiliate.Platform, command string, args []string, opts *options) (*affiliate.Result, error) {
	switch command {
	case "material":
		return client.MaterialSearch(ctx, &affiliate.MaterialSearchRequest{
			Keyword:    opts.keyword,
			Page:       opts.page,
			PageSize:   opts.pageSize,
			AdzoneID:   opts.adzoneID,
			MaterialID: taobaoOnly(client, opts.materialID),
		})

	case "link":
		return client.LinkConvert(ctx, &affiliate.LinkConvertRequest{
			Content:       opts.content,
			ItemID:        firstOf(splitList(opts.itemIDs)),
			URL:           opts.url,
			AdzoneID:      opts.adzoneID,
			PID:           opts.pid,
			GoodsSignList: splitList(opts.goodsSigns),
			GoodsIDList:   splitList(opts.goodsIDs),
			MaterialID:    linkMaterial(client, opts),
		})

	case "shop":
		return client.ShopSearch(ctx, &affiliate.ShopSearchRequest{
			Keyword:    opts.keyword,
			Page:       opts.page,
			PageSize:   opts.pageSize,
			AdzoneID:   opts.adzoneID,
			MaterialID: taobaoOnly(client, opts.materialID),
		})

	case "detail":
		return client.ItemDetail(ctx, &affiliate.ItemDetailRequest{
			ItemIDs:       splitList(opts.itemIDs),
			GoodsSignList: splitList(opts.goodsSigns),
			GoodsIDList:   splitList(opts.goodsIDs),
		})

	case "call":
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: call requires an API method argument", affiliate.ErrInvalidParams)
		}
		params, err := parseParams(opts.params)
		if err != nil {
			return nil, err
		}
		return client.Call(ctx, args[0], params)

	default:
		return nil, fmt.Errorf("%w: unknown command %q", affiliate.ErrInvalidParams, command)
	}
}

// taobaoOnly passes the material id through for Taobao searches
func taobaoOnly(client affiliate.Platform, materialID string) string {
	if client.PlatformCode() != affiliate.PlatformCodeTaobao {
		return ""
	}
	return materialID
}

// linkMaterial returns the JD materialId, accepting -url as an alias
func linkMaterial(client affiliate.Platform, opts *options) string {
	if client.PlatformCode() != affiliate.PlatformCodeJD {
		return ""
	}
	if opts.materialID != "" {
		return opts.materialID
	}
	return opts.url
}

// parseParams decodes the -params JSON object keeping numbers exact
func parseParams(raw string) (affiliate.Params, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var params affiliate.Params
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("%w: -params must be a JSON object: %v", affiliate.ErrInvalidParams, err)
	}
	return params, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return affiliate.CompactStrings(strings.Split(s, ","))
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// writeResult pretty-prints the payload JSON
func writeResult(w io.Writer, res *affiliate.Result) error {
	raw, err := res.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

func logFailure(log *zap.Logger, err error) {
	if pe, ok := affiliate.AsPlatformError(err); ok {
		log.Error("Platform rejected request",
			zap.String("platform", pe.Platform.String()),
			zap.Int("code", pe.Code),
			zap.String("api_code", pe.APICode),
			zap.String("message", pe.Message),
		)
		return
	}
	log.Error("Command failed", zap.Error(err))
}

func printUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, `Usage: shopunion -platform <taobao|pdd|jd> [flags] <command> [args]

Commands:
  material            Search promotable goods (-keyword, -page, -page-size)
  link                Convert a product into a promotion link
                        taobao: -content | -item-ids | -url
                        pdd:    -goods-sign | -goods-id [-pid]
                        jd:     -material-id | -url
  shop                Search shops (-keyword, -page, -page-size)
  detail              Item detail (-item-ids, or -goods-sign/-goods-id for pdd)
  call <method>       Invoke any API method with -params '{"k":"v"}'

Flags:`)
	fs.PrintDefaults()
}
