package triage

// stepsPerBatch is how many remedies a single turn serves.
const stepsPerBatch = 3

// remedyPlaybooks holds the ordered self-service steps per category.
var remedyPlaybooks = map[RemedyCategory][]string{
	CategoryConnectivity: {
		"Restart your router by unplugging it for 30 seconds, then plugging it back in.",
		"Check that all cables between the wall outlet and your router are firmly connected.",
		"Move closer to the router or connect a device directly with an ethernet cable.",
		"Forget the Wi-Fi network on your device and reconnect with your password.",
		"Run a speed test at two different times to see if the slowdown is constant.",
		"Check our outage page to see if there is a known incident in your area.",
	},
	CategoryBroadcast: {
		"Check that the TV and receiver are both powered on and set to the correct input.",
		"Unplug the receiver for 30 seconds and plug it back in to refresh the signal.",
		"Verify the coaxial or HDMI cable is seated firmly at both ends.",
		"Try a different channel to see whether the problem affects all channels.",
		"Re-scan channels from the receiver's settings menu.",
		"Check for a service alert banner in the on-screen guide.",
	},
	CategoryDeviceBoot: {
		"Hold the power button for 10 seconds to force the device off, then start it again.",
		"Unplug the power cable, wait one minute, and reconnect it.",
		"Try a different wall outlet to rule out the socket.",
		"Check the power cable for damage and make sure the connector is fully inserted.",
		"If the device shows a status light, note its color and blink pattern.",
		"Remove any connected USB accessories and try starting again.",
	},
	CategoryGeneric: {
		"Restart the affected equipment and wait two minutes for it to come back up.",
		"Check that every cable involved is firmly connected at both ends.",
		"Check our status page for a known outage in your area.",
		"Try the service on a second device to see if the problem follows the device.",
		"Note any error message or code shown so we can look it up.",
		"If the problem started after a change on your side, undo that change.",
	},
}

// remediesFor returns the full ordered playbook for a category,
// defaulting to the generic playbook for unknown categories.
func remediesFor(category RemedyCategory) []string {
	if steps, ok := remedyPlaybooks[category]; ok {
		return steps
	}
	return remedyPlaybooks[CategoryGeneric]
}

// takeSteps splits off the next batch of remedies to show.
func takeSteps(steps []string) (batch, remaining []string) {
	if len(steps) <= stepsPerBatch {
		return steps, nil
	}
	return steps[:stepsPerBatch], steps[stepsPerBatch:]
}
