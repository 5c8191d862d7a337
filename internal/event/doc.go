/*
Package event provides a type-safe, pub/sub event system for the scrapekit daemon.

The event system enables decoupled communication between the interpreter, the
effect pumps, the daemon scheduler, and the status server by allowing publishers
to emit events and subscribers to react to them without direct dependencies.

# Architecture

The package is built on top of watermill's gochannel for infrastructure while
maintaining direct-call semantics to preserve type information. It provides both
synchronous and asynchronous event publishing patterns.

# Event Types

Effect Events:
  - effect.invoked: a script executed an `effect` statement

Job Events:
  - job.started: a scheduled job run began
  - job.finished: a scheduled job run completed (check Record.Error)
  - results.changed: a job produced results differing from its previous run

Daemon Events:
  - config.reloaded: the daemon re-read its configuration file

# Basic Usage

Publishing events:

	// Asynchronous publishing (non-blocking)
	event.Publish(event.Event{
		Type: event.JobStarted,
		Data: event.JobStartedData{Record: rec},
	})

	// Synchronous publishing (blocking until all subscribers complete)
	event.PublishSync(event.Event{
		Type: event.EffectInvoked,
		Data: event.EffectInvokedData{Name: "print", Args: args},
	})

Subscribing to specific events:

	unsubscribe := event.Subscribe(event.JobFinished, func(e event.Event) {
		data := e.Data.(event.JobFinishedData)
		logging.Info().Str("job", data.Record.Job).Msg("job finished")
	})
	defer unsubscribe()

Subscribing to all events:

	unsubscribe := event.SubscribeAll(func(e event.Event) {
		logging.Debug().Str("type", string(e.Type)).Msg("event received")
	})
	defer unsubscribe()

# Subscriber Safety Guidelines

When using PublishSync, subscribers are called synchronously in the publisher's
goroutine. To avoid blocking or deadlocks, subscribers MUST:

  - Complete quickly (avoid long-running operations)
  - Use non-blocking channel sends (select with default case)
  - Never call Publish/PublishSync from within a subscriber (no re-entrant publishing)
  - Never acquire locks that the publisher might hold

Example of a safe subscriber:

	event.SubscribeAll(func(e event.Event) {
	    select {
	    case eventChan <- e:
	        // Event sent successfully
	    default:
	        // Channel full, drop event to avoid blocking
	    }
	})

# Custom Event Bus

For testing or isolation, you can create custom bus instances:

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.EffectInvoked, handler)
	bus.PublishSync(event.Event{Type: event.EffectInvoked, Data: data})

Daemon jobs share the global bus; each job's effect pump filters
effect.invoked events by the originating suite, job name and sequence
number, so concurrent jobs do not receive each other's invocations.

# Testing

The package provides utilities for testing:

	// Reset global bus state (use in test cleanup)
	event.Reset()

# Thread Safety

The event bus is thread-safe and can be used concurrently from multiple
goroutines. Both publishing and subscribing operations are protected by internal
synchronization.

# Performance Considerations

- Asynchronous publishing (Publish) creates a goroutine per subscriber per event
- Synchronous publishing (PublishSync) calls all subscribers in the current goroutine
- Use PublishSync for effect invocations, where ordering matters
- Use Publish for fire-and-forget notifications

# Integration with Watermill

Every published event is also mirrored in JSON onto a watermill gochannel
topic. Stream exposes that mirror for consumers that want the wire form
rather than typed callbacks:

	msgs, err := event.Stream(ctx)
	for msg := range msgs {
		// msg.Payload is the JSON-encoded Event
		msg.Ack()
	}

This allows future migration to distributed message brokers if needed while
maintaining the current API.
*/
package event
