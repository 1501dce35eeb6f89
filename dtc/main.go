// Command dtc runs the differential temperature controller daemon: it samples
// the collector and store thermistors through the MCU front-end, decides
// whether to circulate, and mirrors configuration and telemetry through the
// remote store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/soltherm/dtc/pkg/clock"
	"github.com/soltherm/dtc/pkg/cloud"
	"github.com/soltherm/dtc/pkg/config"
	"github.com/soltherm/dtc/pkg/control"
	"github.com/soltherm/dtc/pkg/device"
	"github.com/soltherm/dtc/pkg/thermistor"
)

// Mux channel assignments on the MCU.
const (
	collectorChannel = 0
	storeChannel     = 1
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		envFlag    = flag.String("env", ".env", "Environment file with DTC_FIREBASE_HOST / DTC_FIREBASE_AUTH")
		portFlag   = flag.String("p", "", "Serial port override (e.g. /dev/ttyACM0)")
		mockFlag   = flag.Bool("mock", false, "Use mocked hardware and remote store")
		onceFlag   = flag.Bool("once", false, "Run a single polling cycle and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	if cfg.Log.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
		})
	}

	// Credentials are opaque strings supplied via the environment, never the
	// config file. A missing .env is fine when the variables are already set.
	if err := godotenv.Load(*envFlag); err != nil && !os.IsNotExist(err) {
		log.Printf("env file %s: %v", *envFlag, err)
	}

	var (
		client cloud.Client
		dev    device.Device
	)
	if *mockFlag {
		m := cloud.NewMock()
		m.Objects[cloud.ConfigPath] = mockRemoteConfig()
		client = m
		dev = device.NewMock(device.MockConfig{
			CollectorCode: cfg.Mock.CollectorCode,
			StoreCode:     cfg.Mock.StoreCode,
			Noise:         cfg.Mock.Noise,
			CouplingRate:  cfg.Mock.CouplingRate,
		})
	} else {
		host := os.Getenv("DTC_FIREBASE_HOST")
		if host == "" {
			host = cfg.Cloud.Host
		}
		if host == "" {
			log.Fatal("No remote store host: set DTC_FIREBASE_HOST or cloud.host")
		}
		client = cloud.NewREST(host, os.Getenv("DTC_FIREBASE_AUTH"))
		dev = device.New(cfg.Serial.Port, cfg.Serial.BaudRate)
	}

	if err := dev.Connect(); err != nil {
		log.Fatalf("Failed to connect to device: %v", err)
	}
	defer dev.Close()

	if err := run(cfg, client, dev, *onceFlag); err != nil {
		log.Fatal(err)
	}
}

// run executes the polling loop: oversampled reads on both channels,
// temperature conversion, hysteresis decision, relay, telemetry append, and
// a periodic settings refresh. Everything is strictly sequential; a refresh
// or append blocks the cycle for its full duration.
func run(cfg *config.Config, client cloud.Client, dev device.Device, once bool) error {
	settings := cloud.Defaults()
	if !settings.Refresh(client, dev) {
		log.Printf("initial config refresh incomplete; continuing with last-known-good values")
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	clk := clock.New()
	if err := clk.Sync(settings.NTPServer); err != nil {
		log.Printf("clock sync: %v (continuing on local clock)", err)
	}

	tlog := cloud.NewLog(cloud.LogPath, settings.MaxEntries)
	model := thermistor.New(settings.SeriesResistor, settings.ResistanceAt0, settings.TemperatureAt0, settings.BCoefficient)

	refreshEvery := time.Duration(cfg.Cloud.RefreshMinutes) * time.Minute
	lastRefresh := time.Now()

	for {
		cycleStart := time.Now()

		if time.Since(lastRefresh) >= refreshEvery {
			lastRefresh = time.Now()
			prev := settings
			if !settings.Refresh(client, dev) {
				log.Printf("periodic config refresh incomplete")
			}
			if err := settings.Validate(); err != nil {
				log.Printf("refreshed settings rejected: %v (reverting)", err)
				settings = prev
			} else {
				model = thermistor.New(settings.SeriesResistor, settings.ResistanceAt0, settings.TemperatureAt0, settings.BCoefficient)
				tlog.SetCapacity(settings.MaxEntries)
			}
		}

		if err := cycle(settings, model, client, dev, clk, tlog); err != nil {
			log.Printf("cycle: %v", err)
		}

		if once {
			return nil
		}
		if sleep := settings.PollingInterval() - time.Since(cycleStart); sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// cycle performs one sample/decide/log pass.
func cycle(settings cloud.Settings, model thermistor.Model, client cloud.Client, dev device.Device, clk *clock.Clock, tlog *cloud.Log) error {
	adcCollector, err := device.Oversample(dev, collectorChannel, settings.Oversample)
	if err != nil {
		return fmt.Errorf("collector read: %w", err)
	}
	adcStore, err := device.Oversample(dev, storeChannel, settings.Oversample)
	if err != nil {
		return fmt.Errorf("store read: %w", err)
	}

	collector := model.Convert(adcCollector)
	store := model.Convert(adcStore)

	engaged := control.Decide(dev.Relay(), collector.Celsius, store.Celsius, control.Thresholds{
		MinTOn:    settings.MinTOn,
		DeltaTOn:  settings.DeltaTOn,
		DeltaTOff: settings.DeltaTOff,
	})
	if engaged != dev.Relay() {
		if err := dev.SetRelay(engaged); err != nil {
			return fmt.Errorf("relay: %w", err)
		}
	}

	now := clk.Now()
	log.Printf("%s collector [%v] store [%v] active=%v",
		clock.FormatLocal(now, settings.GMTOffset), collector, store, engaged)

	tlog.Append(client, dev, now, collector.Celsius, store.Celsius, engaged)
	return nil
}

// mockRemoteConfig seeds the mock store's config namespace so a -mock run
// passes validation without a populated database.
func mockRemoteConfig() cloud.Object {
	return cloud.Object{
		"seriesResistor":      8170.0,
		"resistanceAt0":       9555.55,
		"temperatureAt0":      25.0,
		"bCoefficient":        3380.0,
		"pollingMilliseconds": 2000.0,
		"maxEntries":          60.0,
		"ntpServer":           "pool.ntp.org",
		"gmtOffset":           0.0,
		"minTOn":              10.0,
		"deltaTOn":            10.0,
		"deltaTOff":           1.0,
		"oversample":          16.0,
	}
}
