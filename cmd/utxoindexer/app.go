package main

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/bsv-blockchain/utxoindexer/client"
	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/services/indexer"
	"github.com/bsv-blockchain/utxoindexer/services/validator"
	"github.com/bsv-blockchain/utxoindexer/settings"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/servicemanager"
	"github.com/bsv-blockchain/utxoindexer/util/tracing"
	"github.com/ordishs/gocore"
	"github.com/urfave/cli/v2"
)

var urlFlag = &cli.StringFlag{
	Name:  "url",
	Usage: "base URL of the indexer API (defaults to the indexer_clientURL setting)",
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      progname,
		Usage:     "UTXO ledger indexer",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the indexer service",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "store",
						Usage: "ledger store URL, overrides the ledgerstore setting",
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "HTTP listen address, overrides the indexer_httpListenAddress setting",
					},
					&cli.BoolFlag{
						Name:  "allow-intra-block-spends",
						Usage: "let transactions spend outputs created earlier in the same block",
						Value: true,
					},
				},
			},
			{
				Name:   "submit",
				Usage:  "Submit a JSON encoded block",
				Action: submit,
				Flags: []cli.Flag{
					urlFlag,
					&cli.StringFlag{
						Name:     "file",
						Usage:    "block file, - reads stdin",
						Required: true,
					},
				},
			},
			{
				Name:   "balance",
				Usage:  "Print the balance of an address",
				Action: balance,
				Flags: []cli.Flag{
					urlFlag,
					&cli.StringFlag{
						Name:     "address",
						Required: true,
					},
				},
			},
			{
				Name:   "utxos",
				Usage:  "List the unspent outputs of an address",
				Action: utxos,
				Flags: []cli.Flag{
					urlFlag,
					&cli.StringFlag{
						Name:     "address",
						Required: true,
					},
				},
			},
			{
				Name:   "rollback",
				Usage:  "Roll the ledger back to a height",
				Action: rollback,
				Flags: []cli.Flag{
					urlFlag,
					&cli.Int64Flag{
						Name:     "height",
						Required: true,
					},
				},
			},
			{
				Name:   "height",
				Usage:  "Print the current height",
				Action: height,
				Flags:  []cli.Flag{urlFlag},
			},
			{
				Name:   "block",
				Usage:  "Print the stored block at a height",
				Action: block,
				Flags: []cli.Flag{
					urlFlag,
					&cli.UintFlag{
						Name:     "height",
						Required: true,
					},
				},
			},
		},
	}
}

func newLogger(tSettings *settings.Settings) ulogger.Logger {
	return ulogger.New(tSettings.ServiceName,
		ulogger.WithLevel(tSettings.LogLevel),
		ulogger.WithLoggerType(tSettings.LoggerType),
		ulogger.WithPrettyLogs(tSettings.PrettyLogs),
	)
}

func serve(c *cli.Context) error {
	tSettings := settings.NewSettings()

	if store := c.String("store"); store != "" {
		storeURL, err := url.Parse(store)
		if err != nil {
			return errors.NewConfigurationError("invalid store url %q", store, err)
		}

		tSettings.LedgerStore.StoreURL = storeURL
	}

	if listen := c.String("listen"); listen != "" {
		tSettings.Indexer.HTTPListenAddress = listen
	}

	logger := newLogger(tSettings)

	stats := gocore.Config().Stats()
	logger.Infof("STATS\n%s\nVERSION\n-------\n%s (%s)\n", stats, tSettings.Version, tSettings.Commit)

	if tSettings.Tracing.Enabled {
		if err := tracing.InitTracer(tSettings); err != nil {
			return err
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := tracing.ShutdownTracer(ctx); err != nil {
				logger.Errorf("error shutting down tracer: %v", err)
			}
		}()
	}

	sm := servicemanager.NewServiceManager(c.Context, logger)

	server := indexer.NewServer(logger, tSettings, nil,
		validator.WithAllowIntraBlockSpends(c.Bool("allow-intra-block-spends")),
	)
	server.SetHealthHandler(sm.HealthHandler)

	if err := sm.AddService("Indexer", server); err != nil {
		sm.ForceShutdown()
		_ = sm.Wait()

		return err
	}

	return sm.Wait()
}

func newClient(c *cli.Context) (*client.Client, error) {
	tSettings := settings.NewSettings()

	logger := ulogger.New(progname+"-cli", ulogger.WithLevel("ERROR"))

	if u := c.String("url"); u != "" {
		return client.NewClientWithURL(logger, u, tSettings.Indexer.ClientTimeout)
	}

	return client.NewClient(logger, tSettings)
}

func submit(c *cli.Context) error {
	var (
		b   []byte
		err error
	)

	if file := c.String("file"); file == "-" {
		b, err = io.ReadAll(c.App.Reader)
	} else {
		b, err = os.ReadFile(file)
	}

	if err != nil {
		return errors.NewInvalidArgumentError("failed to read block", err)
	}

	blk, err := model.NewBlockFromBytes(b)
	if err != nil {
		return err
	}

	cl, err := newClient(c)
	if err != nil {
		return err
	}

	h, err := cl.SubmitBlock(c.Context, blk)
	if err != nil {
		return err
	}

	return printJSON(c, &model.SubmitBlockResponse{ID: blk.ID, Height: h})
}

func balance(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}

	address := c.String("address")

	value, err := cl.QueryBalance(c.Context, address)
	if err != nil {
		return err
	}

	return printJSON(c, &model.BalanceResponse{Address: address, Balance: value})
}

func utxos(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}

	address := c.String("address")

	list, err := cl.GetUTXOs(c.Context, address)
	if err != nil {
		return err
	}

	var sum uint64
	for _, u := range list {
		sum += u.Value
	}

	return printJSON(c, &model.UTXOsResponse{Address: address, Balance: sum, UTXOs: list})
}

func rollback(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}

	h, err := cl.RollbackTo(c.Context, c.Int64("height"))
	if err != nil {
		return err
	}

	return printJSON(c, &model.HeightResponse{Height: h})
}

func height(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}

	h, err := cl.GetBestHeight(c.Context)
	if err != nil {
		return err
	}

	return printJSON(c, &model.HeightResponse{Height: h})
}

func block(c *cli.Context) error {
	cl, err := newClient(c)
	if err != nil {
		return err
	}

	h := c.Uint("height")
	if uint64(h) > uint64(^uint32(0)) {
		return errors.NewInvalidArgumentError("height %d out of range", h)
	}

	record, err := cl.GetBlock(c.Context, uint32(h))
	if err != nil {
		return err
	}

	return printJSON(c, record)
}

func printJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
