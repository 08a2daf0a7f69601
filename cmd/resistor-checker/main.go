package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/peterbourgon/ff/v3"
	checker "github.com/zaki1905/phy132-resistor-checker"
)

func main() {

	fs := flag.NewFlagSet("resistor-checker", flag.ExitOnError)
	var (
		_                = fs.String("config", "", "config file (optional), json format.")
		serviceName      = fs.String("name", "", "name for this checker service instance")
		serviceID        = fs.String("id", "", "id for this checker service instance, leave blank to auto-generate a unique id")
		serviceHost      = fs.String("host", "localhost", "name/address of host for this service")
		servicePort      = fs.Int("port", 0, "port to run service on, if not specified will assign an available port automatically")
		webhook          = fs.String("webhook", "", "url of the apps-script webhook that appends submissions to the class spreadsheet, leave blank to run without recording")
		webhookTimeout   = fs.Int("webhookTimeout", 8, "seconds to wait on the submission webhook before giving up")
		catalogFile      = fs.String("catalog", "", "path of a catalog json file, leave blank to use the built-in measured table")
		supplyVolts      = fs.Float64("supplyVolts", checker.DefaultSupplyVolts, "supply voltage the current and power questions assume")
		ratingWatts      = fs.Float64("ratingWatts", checker.DefaultRatingWatts, "power rating assumed for resistors without one in the catalog")
		tolerance        = fs.Float64("tolerance", checker.DefaultTolerancePct, "percentage tolerance applied to each checked quantity")
		almostMultiplier = fs.Float64("almostMultiplier", checker.DefaultAlmostMultiplier, "multiplier widening the tolerance band that still counts as close")
	)

	ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("RESISTOR_CHECKER"),
	)

	opts := []checker.Option{
		checker.Name(*serviceName),
		checker.ID(*serviceID),
		checker.Host(*serviceHost),
		checker.Port(*servicePort),
		checker.Webhook(*webhook),
		checker.WebhookTimeout(*webhookTimeout),
		checker.CatalogFile(*catalogFile),
		checker.SupplyVolts(*supplyVolts),
		checker.RatingWatts(*ratingWatts),
		checker.TolerancePercent(*tolerance),
		checker.AlmostMultiplier(*almostMultiplier),
	}

	srvc, err := checker.New(opts...)
	if err != nil {
		fmt.Printf("\nCannot create resistor-checker service:\n%s\n\n", err)
		return
	}

	srvc.PrintConfig()

	// signal handler for shutdown
	closed := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill, os.Interrupt)
	go func() {
		<-c
		fmt.Println("\nresistor-checker shutting down")
		srvc.Shutdown()
		fmt.Println("resistor-checker closed")
		close(closed)
	}()

	srvc.Start()

	// block until shutdown by sig-handler
	<-closed

}
