package cmd

import (
	"encoding/json"
	"fmt"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	"github.com/AzielCF/az-plant/domains/telemetry"
	"github.com/AzielCF/az-plant/infrastructure/camera"
	"github.com/AzielCF/az-plant/infrastructure/serial"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture one photo and print its path",
	Run:   captureOnce,
}

var readSensorsCmd = &cobra.Command{
	Use:   "read-sensors",
	Short: "Read the serial sensors once and print the record",
	Run:   readSensorsOnce,
}

func init() {
	rootCmd.AddCommand(captureCmd, readSensorsCmd)
}

func captureOnce(_ *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()

	cfg := coreconfig.Global
	capturer, err := camera.NewCapturer(cfg.Paths.Images, cfg.Camera.Command)
	if err != nil {
		logrus.Fatalf("[CAMERA] %v", err)
	}
	img, err := capturer.Capture(ctx)
	if err != nil {
		logrus.Fatalf("[CAMERA] %v", err)
	}
	fmt.Println(img.Path)
}

type sensorReport struct {
	telemetry.Record
	Soil        string `json:"soil"`
	Temperature string `json:"temperature_status"`
	Humidity    string `json:"humidity_status"`
}

func readSensorsOnce(_ *cobra.Command, _ []string) {
	ctx, stop := signalContext()
	defer stop()

	cfg := coreconfig.Global
	reader := serial.NewReader(cfg.Serial.Port, cfg.Serial.BaudRate)
	defer reader.Close()

	record, err := reader.Read(ctx, cfg.Serial.Window)
	if err != nil {
		logrus.Fatalf("[SERIAL] %v", err)
	}

	out, _ := json.MarshalIndent(sensorReport{
		Record:      record,
		Soil:        string(telemetry.ClassifySoil(record.SoilMoisture)),
		Temperature: string(telemetry.ClassifyTemperature(record.Temperature)),
		Humidity:    string(telemetry.ClassifyHumidity(record.Humidity)),
	}, "", "  ")
	fmt.Println(string(out))
}
