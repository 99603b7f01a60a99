// Command ttswd runs the time-triggered transmission scheduler for a
// single virtual switch port: it ingests control-channel download
// batches, rebuilds the send plan whenever one completes, and drives a
// timer loop that logs each flow's transmission instant in place of an
// egress collaborator that would otherwise be handed the packet here.
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/qijinzhi/ovs/internal/ctrlmsg"
	"github.com/qijinzhi/ovs/internal/scheduler"
)

func main() {
	fs := pflag.NewFlagSet("ttswd", pflag.ExitOnError)
	port := fs.Uint8("port", 0, "datapath port number this scheduler instance serves")
	portName := fs.String("port-name", "port0", "label applied to this port's exported metrics")
	edgePort := fs.Bool("edge-port", false, "mark this port as an edge vport carrying TRDP-to-TT conversion")
	metricsAddr := fs.String("metrics-listen", ":9273", "address the Prometheus /metrics endpoint listens on")
	controlFile := fs.String("control-file", "", "path to read control-channel download batches from; defaults to stdin")
	logLevel := fs.String("log-level", "info", "logrus level: debug, info, warn, error")
	fs.Parse(os.Args[1:])

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	}
	entry := log.WithField("port", *portName)

	ctx := scheduler.NewContext(*portName, nil)
	ctx.EdgePort = *edgePort

	dispatcher := ctrlmsg.NewDispatcher()
	dispatcher.Register(*port, ctrlmsg.TableSet{Send: ctx.SendTable, Arrive: ctx.ArriveTable})

	reg := prometheus.NewRegistry()
	reg.MustRegister(ctx.Collectors()...)
	reg.MustRegister(ctx.SendTable.Collectors()...)
	reg.MustRegister(ctx.ArriveTable.Collectors()...)

	controlSrc := io.Reader(os.Stdin)
	if *controlFile != "" {
		f, err := os.Open(*controlFile)
		if err != nil {
			entry.WithError(err).Fatal("open control file")
		}
		defer f.Close()
		controlSrc = f
	}

	loop := scheduler.NewLoop(ctx, nil, func(flowID uint32) {
		entry.WithField("flow_id", flowID).Info("send")
	})

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		entry.Info("shutting down")
		loop.Stop()
		cancel()
	}()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		srv := &http.Server{Addr: *metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			<-groupCtx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			srv.Shutdown(shutdownCtx)
		}()
		entry.WithField("addr", *metricsAddr).Info("metrics listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		for {
			if err := dispatcher.Dispatch(controlSrc); err != nil {
				if err == io.EOF {
					return nil
				}
				entry.WithError(err).Error("dispatch control batch")
				return err
			}
			ctx.Dispatch()
			if ctx.State() == scheduler.StatePlanned {
				if err := ctx.Arm(); err != nil {
					entry.WithError(err).Error("arm schedule context")
					return err
				}
				group.Go(loop.Run)
			}
			entry.WithField("send_table_entries", ctx.SendTable.NumItems()).Debug("rebuilt send plan")
		}
	})

	if err := group.Wait(); err != nil && groupCtx.Err() == nil {
		entry.WithError(err).Fatal("ttswd exited with error")
	}
}
