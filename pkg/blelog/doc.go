// Package blelog aggregates BLE adapter and device activity into a single,
// filterable stream of Events.
//
// A Log taps the adapter's status, scan and connection streams. Whenever a
// device connects, a bundle of nested taps is attached to it (services,
// characteristics, descriptors and their reads, writes and notifications);
// whenever it leaves the Connected state the bundle is released. Releasing the
// Session releases everything, including taps created after the session
// started.
//
//	log := blelog.WhenActionOccurs(adapter,
//	    blelog.WithFlags(blelog.DefaultFlags|blelog.CharacteristicNotify),
//	    blelog.WithTracer(blelog.NewLogTracer(logger)))
//
//	session := log.Start(func(ev blelog.Event) {
//	    fmt.Println(ev)
//	}, nil)
//	defer session.Release()
package blelog
