package domain

import "testing"

func TestFaceTransitions(t *testing.T) {
	allowed := [][2]FaceDetectionStatus{
		{FaceDetectionPending, FaceDetectionProcessing},
		{FaceDetectionProcessing, FaceDetectionCompleted},
		{FaceDetectionProcessing, FaceDetectionFailed},
		{FaceDetectionFailed, FaceDetectionPending},
	}
	for _, tc := range allowed {
		if !CanTransitionFace(tc[0], tc[1]) {
			t.Errorf("expected %s -> %s to be allowed", tc[0], tc[1])
		}
	}

	denied := [][2]FaceDetectionStatus{
		{FaceDetectionPending, FaceDetectionCompleted},
		{FaceDetectionPending, FaceDetectionFailed},
		{FaceDetectionCompleted, FaceDetectionPending},
		{FaceDetectionCompleted, FaceDetectionProcessing},
		{FaceDetectionFailed, FaceDetectionCompleted},
	}
	for _, tc := range denied {
		if CanTransitionFace(tc[0], tc[1]) {
			t.Errorf("expected %s -> %s to be denied", tc[0], tc[1])
		}
	}
}

func TestBlurTransitions(t *testing.T) {
	if !CanTransitionBlur(BlurNone, BlurProcessing) {
		t.Error("none -> processing should be allowed")
	}
	if !CanTransitionBlur(BlurComplete, BlurNone) {
		t.Error("review rejection (complete -> none) should be allowed")
	}
	if !CanTransitionBlur(BlurFailed, BlurProcessing) {
		t.Error("failed -> processing (retry) should be allowed")
	}
	if CanTransitionBlur(BlurNone, BlurComplete) {
		t.Error("none -> complete must go through processing")
	}
	if CanTransitionBlur(BlurComplete, BlurProcessing) {
		t.Error("complete -> processing should be denied; reject first")
	}
}

func TestAITransitions(t *testing.T) {
	if !CanTransitionAI(AIFailed, AIPending) {
		t.Error("failed -> pending (operator reset) should be allowed")
	}
	if CanTransitionAI(AICompleted, AIPending) {
		t.Error("completed is terminal on the labeling track")
	}
	if CanTransitionAI(AIPending, AICompleted) {
		t.Error("pending -> completed must go through processing")
	}
}

func TestTrainingTransitions(t *testing.T) {
	// Every decision is reversible back through pending.
	if !CanTransitionTraining(TrainingPending, TrainingApproved) {
		t.Error("pending -> approved should be allowed")
	}
	if !CanTransitionTraining(TrainingApproved, TrainingPending) {
		t.Error("approved -> pending (reopen) should be allowed")
	}
	if !CanTransitionTraining(TrainingRejected, TrainingPending) {
		t.Error("rejected -> pending (reopen) should be allowed")
	}
	if CanTransitionTraining(TrainingApproved, TrainingRejected) {
		t.Error("approved -> rejected must reopen first")
	}
}

func TestNeedsBlur(t *testing.T) {
	m := &MediaAsset{FaceDetectionStatus: FaceDetectionPending}
	if !m.NeedsBlur() {
		t.Error("unscanned asset must be treated as needing blur")
	}

	m = &MediaAsset{FaceDetectionStatus: FaceDetectionCompleted, HasFaces: false}
	if m.NeedsBlur() {
		t.Error("faceless asset does not need blur")
	}

	m = &MediaAsset{FaceDetectionStatus: FaceDetectionCompleted, HasFaces: true}
	if !m.NeedsBlur() {
		t.Error("asset with faces needs blur")
	}
}

func TestBlurSettled(t *testing.T) {
	m := &MediaAsset{FaceDetectionStatus: FaceDetectionCompleted, HasFaces: false}
	if !m.BlurSettled() {
		t.Error("faceless asset is settled without any blur")
	}

	m = &MediaAsset{
		FaceDetectionStatus: FaceDetectionCompleted,
		HasFaces:            true,
		BlurStatus:          BlurComplete,
		BlurApproved:        false,
	}
	if m.BlurSettled() {
		t.Error("unapproved blurred copy does not settle the track")
	}
	m.BlurApproved = true
	if !m.BlurSettled() {
		t.Error("approved blurred copy settles the track")
	}
}
