// Package service serves the engine operations over gRPC as the arm.v1.Arm
// service and provides a typed client for it.
//
// Arguments and results are bridge terms carried in protobuf well-known
// types. Engine errors travel as gRPC statuses whose detail holds the error's
// kind, rule and field path.
package service
