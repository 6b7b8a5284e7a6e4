package domain

// SynthesisOutcome is either Ready with a stored artifact or Skipped with the
// reason speech could not be produced. The zero value is not meaningful.
type SynthesisOutcome struct {
	artifact *AudioArtifact
	reason   error
}

func Ready(artifact AudioArtifact) SynthesisOutcome {
	return SynthesisOutcome{artifact: &artifact}
}

func Skipped(reason error) SynthesisOutcome {
	return SynthesisOutcome{reason: reason}
}

func (o SynthesisOutcome) Ready() bool {
	return o.artifact != nil
}

func (o SynthesisOutcome) Artifact() AudioArtifact {
	if o.artifact == nil {
		return AudioArtifact{}
	}
	return *o.artifact
}

func (o SynthesisOutcome) Reason() error {
	return o.reason
}
