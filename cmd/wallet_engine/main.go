package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wallet_engine/internal/app/port"
	"wallet_engine/internal/app/service"
	"wallet_engine/internal/client"
	"wallet_engine/internal/infrastructure/address"
	"wallet_engine/internal/infrastructure/catalog"
	"wallet_engine/internal/infrastructure/configloader"
	networkclient "wallet_engine/internal/infrastructure/network/client"
	"wallet_engine/internal/infrastructure/restapi"
	"wallet_engine/internal/infrastructure/walletcore"
	"wallet_engine/internal/pkg/logger"
	"wallet_engine/internal/pkg/metrics"
	"wallet_engine/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := utils.GetEnv("CONFIG_PATH", configloader.DefaultPath)
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Не удалось загрузить конфигурацию %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to initialize zapLogger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	logger.Init(cfg.Logging.Level, zapLogger)
	appLogger := logger.NewSlogAdapter()
	logger.Info("Wallet engine запускается...", "config", cfgPath)

	metrics.MustRegisterMetrics()

	assetCatalog, err := catalog.FromConfig(cfg, appLogger)
	if err != nil {
		logger.Fatal("Не удалось построить каталог активов", "ошибка", err)
	}

	staticRates, err := parseStaticRates(cfg.Pricing.StaticRates)
	if err != nil {
		logger.Fatal("Некорректные staticRates в конфигурации", "ошибка", err)
	}

	var feed port.RateFeed
	switch cfg.Pricing.Feed {
	case configloader.FeedStatic:
		feed = client.NewStaticRateFeed(feedRates(staticRates, assetCatalog))
	default:
		cg := cfg.Pricing.CoinGecko
		feed = client.NewCoinGeckoClient(
			cg.BaseURL,
			cg.APIKey,
			time.Duration(cg.RequestTimeoutMillis)*time.Millisecond,
			cg.RequestsPerMinute,
			cg.MaxIDsPerRequest,
			zapLogger,
		)
	}

	pricing := service.NewPricingService(feed, assetCatalog, appLogger, service.PricingOptions{
		FiatCurrencies:   cfg.Pricing.FiatCurrencies,
		CacheTTL:         time.Duration(cfg.Pricing.CacheTTLMinutes) * time.Minute,
		MaxIDsPerRequest: cfg.Pricing.CoinGecko.MaxIDsPerRequest,
		MaxConcurrent:    cfg.Performance.MaxConcurrentRoutines,
		StaticRates:      staticRates,
	})
	go pricing.Run(ctx, cfg.RefreshInterval())

	var core port.WalletCore
	switch cfg.WalletCore.Mode {
	case configloader.WalletCoreFile:
		core = walletcore.NewFileSnapshotClient(cfg.WalletCore.SnapshotPath, appLogger)
		logger.Info("Wallet core: файл снапшота", "path", cfg.WalletCore.SnapshotPath)
	default:
		core = walletcore.NewHTTPClient(
			cfg.WalletCore.BaseURL,
			time.Duration(cfg.WalletCore.RequestTimeoutMillis)*time.Millisecond,
			zapLogger,
		)
		logger.Info("Wallet core: HTTP", "baseURL", cfg.WalletCore.BaseURL)
	}

	gasProvider := networkclient.NewEVMClientProvider(cfg, zapLogger)
	if closer, ok := gasProvider.(interface{ Close() }); ok {
		defer closer.Close()
	}
	feeRegistry, err := networkclient.BuildFeeRegistry(cfg, assetCatalog, core, gasProvider, zapLogger)
	if err != nil {
		logger.Fatal("Не удалось настроить оценку комиссий", "ошибка", err)
	}
	fees := service.NewFeeEstimator(feeRegistry, appLogger)

	aggregator := service.NewAggregator(assetCatalog, cfg.FiatCurrency, appLogger)
	wallet := service.NewWalletService(core, aggregator, pricing, cfg.EnabledAssets, appLogger)
	transfers := service.NewTransferComposer(assetCatalog, address.NewValidator(), core, wallet, cfg.WalletCore.AccountIndex, appLogger)
	history := service.NewHistoryService(core, assetCatalog, pricing, cfg.FiatCurrency, appLogger)
	sessions := service.NewTransferSessionStore(
		ctx,
		transfers,
		fees,
		time.Duration(cfg.Server.TransferSessionTTL)*time.Minute,
		time.Duration(cfg.Fees.DebounceMillis)*time.Millisecond,
		appLogger,
	)

	if _, err := wallet.RefreshBalances(ctx); err != nil {
		logger.Warn("Начальная загрузка балансов не удалась, портфель пуст до следующего обновления", "ошибка", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewHandler(wallet, transfers, sessions, fees, history, cfg.FiatCurrency, appLogger)
	router := restapi.SetupRouter(handler, cfg.Server, zapLogger)

	srv := &http.Server{
		Addr:         ":" + strings.TrimPrefix(cfg.Server.Port, ":"),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Не удалось запустить HTTP сервер", "ошибка", err)
		}
	}()

	// Ожидание сигнала завершения (например, Ctrl+C)
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Получен сигнал завершения. Завершение работы HTTP сервера...")
	cancel()
	sessions.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при Graceful Shutdown HTTP сервера", "ошибка", err)
	} else {
		logger.Info("HTTP сервер успешно остановлен.")
	}
}

// parseStaticRates converts configured fiat -> denomination -> rate strings.
func parseStaticRates(raw map[string]map[string]string) (map[string]map[string]decimal.Decimal, error) {
	out := make(map[string]map[string]decimal.Decimal, len(raw))
	for fiat, byDenom := range raw {
		fiat = strings.ToLower(fiat)
		if out[fiat] == nil {
			out[fiat] = make(map[string]decimal.Decimal, len(byDenom))
		}
		for denom, s := range byDenom {
			r, err := decimal.NewFromString(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("static rate %s/%s: %w", denom, fiat, err)
			}
			if r.IsNegative() {
				return nil, fmt.Errorf("static rate %s/%s is negative", denom, fiat)
			}
			out[fiat][strings.ToLower(denom)] = r
		}
	}
	return out, nil
}

// feedRates re-keys denomination rates by catalog price feed id for the static feed.
func feedRates(rates map[string]map[string]decimal.Decimal, c port.Catalog) map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal, len(rates))
	for fiat, byDenom := range rates {
		out[fiat] = make(map[string]decimal.Decimal, len(byDenom))
		for denom, r := range byDenom {
			if a, ok := c.Asset(denom); ok && a.PriceFeedID != "" {
				out[fiat][a.PriceFeedID] = r
			}
		}
	}
	return out
}
