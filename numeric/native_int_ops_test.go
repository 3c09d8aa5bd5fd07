package numeric_test

import (
	"math"
	"testing"

	"github.com/dorpxam/einops-go/numeric"
)

func TestIntOps_Add(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.Add(2, 3); got != 5 {
		t.Errorf("2 + 3 = %d, want 5", got)
	}
}

func TestIntOps_Sub(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.Sub(2, 3); got != -1 {
		t.Errorf("2 - 3 = %d, want -1", got)
	}
}

func TestIntOps_Mul(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.Mul(2, 3); got != 6 {
		t.Errorf("2 * 3 = %d, want 6", got)
	}
}

func TestIntOps_Div(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.Div(6, 3); got != 2 {
		t.Errorf("6 / 3 = %d, want 2", got)
	}
	if got := ops.Div(1, 0); got != 0 {
		t.Errorf("1 / 0 = %d, want 0", got)
	}
}

func TestIntOps_FromFloat32(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.FromFloat32(3.14); got != 3 {
		t.Errorf("FromFloat32(3.14) = %d, want 3", got)
	}
}

func TestIntOps_ToFloat32(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.ToFloat32(3); got != float32(3) {
		t.Errorf("ToFloat32(3) = %v, want 3.0", got)
	}
}

func TestIntOps_Tanh(t *testing.T) {
	ops := numeric.IntOps{}
	want := int(math.Tanh(2))
	if got := ops.Tanh(2); got != want {
		t.Errorf("Tanh(2) = %d, want %d", got, want)
	}
}

func TestIntOps_Sigmoid(t *testing.T) {
	ops := numeric.IntOps{}
	want := int(1.0 / (1.0 + math.Exp(-2.0)))
	if got := ops.Sigmoid(2); got != want {
		t.Errorf("Sigmoid(2) = %d, want %d", got, want)
	}
}

func TestIntOps_ReLU(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.ReLU(2); got != 2 {
		t.Errorf("ReLU(2) = %d, want 2", got)
	}
	if got := ops.ReLU(-2); got != 0 {
		t.Errorf("ReLU(-2) = %d, want 0", got)
	}
}

func TestIntOps_LeakyReLU(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.LeakyReLU(2, 0.1); got != 2 {
		t.Errorf("LeakyReLU(2) = %d, want 2", got)
	}
	if got := ops.LeakyReLU(-10, 0.1); got != -1 {
		t.Errorf("LeakyReLU(-10) = %d, want -1", got)
	}
}

func TestIntOps_TanhGrad(t *testing.T) {
	ops := numeric.IntOps{}
	tanhX := int(math.Tanh(2))
	want := 1 - (tanhX * tanhX)
	if got := ops.TanhGrad(2); got != want {
		t.Errorf("TanhGrad(2) = %d, want %d", got, want)
	}
}

func TestIntOps_SigmoidGrad(t *testing.T) {
	ops := numeric.IntOps{}
	sigX := int(1.0 / (1.0 + math.Exp(-2.0)))
	want := sigX * (1 - sigX)
	if got := ops.SigmoidGrad(2); got != want {
		t.Errorf("SigmoidGrad(2) = %d, want %d", got, want)
	}
}

func TestIntOps_ReLUGrad(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.ReLUGrad(2); got != 1 {
		t.Errorf("ReLUGrad(2) = %d, want 1", got)
	}
	if got := ops.ReLUGrad(-2); got != 0 {
		t.Errorf("ReLUGrad(-2) = %d, want 0", got)
	}
}

func TestIntOps_LeakyReLUGrad(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.LeakyReLUGrad(2, 0.1); got != 1 {
		t.Errorf("LeakyReLUGrad(2) = %d, want 1", got)
	}
	if got := ops.LeakyReLUGrad(-2, 0.1); got != 0 {
		t.Errorf("LeakyReLUGrad(-2) = %d, want 0", got)
	}
}

func TestIntOps_IsZero(t *testing.T) {
	ops := numeric.IntOps{}
	if !ops.IsZero(0) {
		t.Errorf("IsZero(0) = false, want true")
	}
	if ops.IsZero(1) {
		t.Errorf("IsZero(1) = true, want false")
	}
}

func TestIntOps_Exp(t *testing.T) {
	ops := numeric.IntOps{}
	want := int(math.Exp(2))
	if got := ops.Exp(2); got != want {
		t.Errorf("Exp(2) = %d, want %d", got, want)
	}
}

func TestIntOps_Log(t *testing.T) {
	ops := numeric.IntOps{}
	want := int(math.Log(2))
	if got := ops.Log(2); got != want {
		t.Errorf("Log(2) = %d, want %d", got, want)
	}
}

func TestIntOps_Pow(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.Pow(2, 3); got != 8 {
		t.Errorf("Pow(2, 3) = %d, want 8", got)
	}
}

func TestIntOps_Abs(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.Abs(2); got != 2 {
		t.Errorf("Abs(2) = %d, want 2", got)
	}
	if got := ops.Abs(-2); got != 2 {
		t.Errorf("Abs(-2) = %d, want 2", got)
	}
}

func TestIntOps_Sum(t *testing.T) {
	ops := numeric.IntOps{}
	if got := ops.Sum([]int{1, 2, 3}); got != 6 {
		t.Errorf("Sum([1,2,3]) = %d, want 6", got)
	}
}
