package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	crwebhook "sigs.k8s.io/controller-runtime/pkg/webhook"

	"appdeployer/pkg/adapters"
	"appdeployer/pkg/adapters/webhooks"
	appv1alpha1 "appdeployer/pkg/api/v1alpha1"
	"appdeployer/pkg/controllers/appdeployment"
	"appdeployer/pkg/descriptor"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(appv1alpha1.AddToScheme(scheme))
}

func main() {
	var metricsAddr string
	var probeAddr string
	var enableLeaderElection bool
	var webhookPort int
	var descriptorPath string
	enableWebhooks := defaultEnableWebhooks()

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the health probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false, "Enable leader election for controller manager. Enabling this will ensure there is only one active controller manager.")
	flag.IntVar(&webhookPort, "webhook-port", 9443, "Webhook server port.")
	flag.BoolVar(&enableWebhooks, "enable-webhooks", enableWebhooks, "Enable Kubernetes admission webhooks.")
	flag.StringVar(&descriptorPath, "descriptor", "", "Deploy the given descriptor file once and exit instead of running the operator.")
	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if descriptorPath != "" {
		if err := deployOnce(descriptorPath); err != nil {
			setupLog.Error(err, "one-shot deployment failed")
			os.Exit(1)
		}
		return
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "appdeployer-operator",
		WebhookServer:          crwebhook.NewServer(crwebhook.Options{Port: webhookPort}),
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	if err := appdeployment.SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "AppDeployment")
		os.Exit(1)
	}

	if enableWebhooks {
		if err := (&appv1alpha1.AppDeployment{}).SetupWebhookWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create webhook", "webhook", "AppDeployment")
			os.Exit(1)
		}
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

// deployOnce runs a single reconciliation for a descriptor file against the
// current cluster context and prints the per-resource outcomes.
func deployOnce(path string) error {
	namespace, name, spec, err := descriptor.Load(path)
	if err != nil {
		return err
	}

	kubeClient, err := client.New(ctrl.GetConfigOrDie(), client.Options{Scheme: scheme})
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	reconciler := appdeployment.NewReconciler(adapters.NewControllerRuntimeClient(kubeClient))
	ctx := ctrl.SetupSignalHandler()

	report, err := reconciler.Reconcile(ctx, appdeployment.Key{Namespace: namespace, Name: name}, spec)
	if err != nil {
		return err
	}

	for _, result := range report.Results {
		if result.Reason != "" {
			fmt.Printf("%s/%s: %s (%s)\n", result.Kind, result.Name, result.Outcome, result.Reason)
			continue
		}
		fmt.Printf("%s/%s: %s\n", result.Kind, result.Name, result.Outcome)
	}
	if report.Rollout != nil {
		fmt.Printf("rollout: %s (%d/%d replicas ready)\n", report.Rollout.State, report.Rollout.ReadyReplicas, report.Rollout.DesiredReplicas)
	}

	if !report.Succeeded {
		return fmt.Errorf("deployment failed at %s: %s", report.FailedResource, report.FailureReason)
	}

	fmt.Println("deployment succeeded")
	return nil
}

func defaultEnableWebhooks() bool {
	env := os.Getenv("ENABLE_WEBHOOKS")
	if env == "" {
		return true
	}
	return webhooks.ParseBoolEnv(env)
}
