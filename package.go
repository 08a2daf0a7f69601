//
// web service that checks student resistor-lab submissions - a measured
// resistance and the maximum-voltage, current and power figures derived
// from it - against the instructor-measured reference for the assigned
// resistor.
// package grades each quantity inside a percentage tolerance band
// (match / close / mismatch) and produces an overall Correct, Almost or
// Incorrect result, then appends the graded submission to the class
// spreadsheet through an apps-script webhook so correct work can be
// credited.
//
package resistorchecker
