// scorectl 환산 점수 엔진 운영 도구
package main

func main() {
	Execute()
}
