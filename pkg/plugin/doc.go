// Package plugin holds the plugin model: descriptors, the closed set of
// plugin kinds, classification into a registry and resolution of
// configured plugins against a catalog of factories.
//
// A plugin is an observer that runs for every route before it is mounted.
// Subscribers of kind "middleware" receive the host, the route's file path,
// its mount path and the loaded module. A subscriber may return a handler
// that replaces the module for the rest of the chain and for the mount:
//
//	sub := plugin.SubscriberFunc(func(ctx context.Context, app host.Host, file, mount string, m http.Handler) (http.Handler, error) {
//		return withTiming(m), nil
//	})
//
//	reg := plugin.Classify([]plugin.Descriptor{{Name: "timing", Kind: plugin.KindMiddleware, Subscriber: sub}})
//
// Descriptors with a kind outside the closed set are dropped silently by
// Classify.
package plugin
