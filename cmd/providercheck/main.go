// cmd/providercheck/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"logo-engine/internal/common/config"
	"logo-engine/internal/common/logger"
	"logo-engine/internal/flux"
	"logo-engine/internal/llm"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	service := llm.NewService(cfg.LLM, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	health := service.HealthCheck(ctx)

	available := 0
	for _, name := range []string{llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGoogle} {
		h, ok := health[name]
		if !ok {
			fmt.Printf("%-10s not configured\n", name)
			continue
		}
		if h.Available {
			available++
			fmt.Printf("%-10s ok (%s)\n", name, h.Latency.Round(time.Millisecond))
		} else {
			fmt.Printf("%-10s unavailable: %s\n", name, h.Error)
		}
	}

	fluxClient := flux.NewClient(cfg.Flux, log)
	if err := fluxClient.CheckCredentials(); err != nil {
		fmt.Printf("%-10s unavailable: %s\n", "flux", err)
	} else {
		available++
		fmt.Printf("%-10s ok\n", "flux")
	}

	if available == 0 {
		zapLog.Error("no provider is available")
		os.Exit(1)
	}
}
